package scoring_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/fraudstream/internal/adapters/scoring"
	"github.com/okian/fraudstream/internal/domain/model"
)

func TestLimited(t *testing.T) {
	Convey("Given an endpoint limited to one call per second", t, func() {
		var calls atomic.Int32
		next := scoring.EndpointFunc(func(context.Context, model.ScoringRequest) ([]byte, error) {
			calls.Add(1)
			return []byte(`{}`), nil
		})
		ep := scoring.NewLimited(next, 1, 1, 10*time.Millisecond)
		req := model.NewScoringRequest("e", []byte("1\n"))

		Convey("When two calls arrive back to back", func() {
			_, first := ep.Invoke(context.Background(), req)
			_, second := ep.Invoke(context.Background(), req)

			Convey("Then the second fails fast as throttled", func() {
				So(first, ShouldBeNil)
				So(errors.Is(second, scoring.ErrThrottled), ShouldBeTrue)
				So(calls.Load(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a limiter with a generous wait budget", t, func() {
		next := scoring.EndpointFunc(func(context.Context, model.ScoringRequest) ([]byte, error) {
			return []byte(`{}`), nil
		})
		ep := scoring.NewLimited(next, 100, 1, time.Second)
		req := model.NewScoringRequest("e", []byte("1\n"))

		Convey("When several calls arrive", func() {
			var errs []error
			for i := 0; i < 3; i++ {
				_, err := ep.Invoke(context.Background(), req)
				errs = append(errs, err)
			}

			Convey("Then they all wait and succeed", func() {
				for _, err := range errs {
					So(err, ShouldBeNil)
				}
			})
		})
	})

	Convey("Given a non-positive rate", t, func() {
		next := scoring.EndpointFunc(func(context.Context, model.ScoringRequest) ([]byte, error) {
			return nil, nil
		})

		Convey("Then the endpoint is returned unwrapped", func() {
			_, wrapped := scoring.NewLimited(next, 0, 1, time.Second).(*scoring.Limited)
			So(wrapped, ShouldBeFalse)
		})
	})
}

func TestTimeout(t *testing.T) {
	Convey("Given an endpoint slower than its timeout", t, func() {
		next := scoring.EndpointFunc(func(ctx context.Context, _ model.ScoringRequest) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		ep := scoring.NewTimeout(next, 10*time.Millisecond)

		Convey("Then the call returns a deadline error", func() {
			_, err := ep.Invoke(context.Background(), model.NewScoringRequest("e", []byte("1\n")))
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})
	})
}
