package scoring_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/fraudstream/internal/adapters/scoring"
	"github.com/okian/fraudstream/internal/domain/model"
)

func TestHTTPEndpoint(t *testing.T) {
	Convey("Given an HTTP scoring service", t, func() {
		var (
			gotBody        string
			gotContentType string
			gotAccept      string
		)
		status := http.StatusOK
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			gotContentType = r.Header.Get("Content-Type")
			gotAccept = r.Header.Get("Accept")
			w.WriteHeader(status)
			if status == http.StatusOK {
				_, _ = w.Write([]byte(`{"predictions":[{"predicted_label":1,"score":0.91}]}`))
				return
			}
			_, _ = w.Write([]byte(strings.Repeat("x", 1000)))
		}))
		defer srv.Close()

		ep := scoring.NewHTTPEndpoint(srv.URL, scoring.WithTimeout(time.Second))
		req := model.NewScoringRequest("cc-fraud", []byte("120,3.5,0\n"))

		Convey("When the service answers 200", func() {
			body, err := ep.Invoke(context.Background(), req)

			Convey("Then the row and content headers are forwarded", func() {
				So(err, ShouldBeNil)
				So(string(body), ShouldContainSubstring, `"score":0.91`)
				So(gotBody, ShouldEqual, "120,3.5,0\n")
				So(gotContentType, ShouldEqual, "text/csv")
				So(gotAccept, ShouldEqual, "application/json")
			})
		})

		Convey("When the service answers 500", func() {
			status = http.StatusInternalServerError
			_, err := ep.Invoke(context.Background(), req)

			Convey("Then the error carries the status and a short excerpt", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, scoring.ErrInvoke), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "status 500")
				So(len(err.Error()), ShouldBeLessThan, 400)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := ep.Invoke(ctx, req)

			Convey("Then the call fails", func() {
				So(errors.Is(err, scoring.ErrInvoke), ShouldBeTrue)
			})
		})
	})
}
