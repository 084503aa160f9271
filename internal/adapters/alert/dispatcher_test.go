package alert_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	pkgerrors "github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/fraudstream/internal/adapters/alert"
	"github.com/okian/fraudstream/internal/domain/dedupe"
	"github.com/okian/fraudstream/internal/domain/model"
)

type published struct {
	topic, message, subject string
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (r *recordingPublisher) Publish(_ context.Context, topic, message, subject string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, published{topic: topic, message: message, subject: subject})
	return nil
}

func (r *recordingPublisher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestDispatcherFraud(t *testing.T) {
	ctx := context.Background()

	Convey("Given a dispatcher with a fraud topic", t, func() {
		pub := &recordingPublisher{}
		d := alert.NewDispatcher(pub,
			alert.WithFraudTopic("arn:aws:sns:us-east-1:1:fraud"),
			alert.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10))),
		)

		Convey("When a fraud row is reported", func() {
			err := d.Fraud(ctx, "rec-1", []byte("120,3.5,0,38.9,-77.3,1,0.91\n"))

			Convey("Then one alert is published with the fixed subject", func() {
				So(err, ShouldBeNil)
				So(pub.count(), ShouldEqual, 1)
				So(pub.sent[0].topic, ShouldEqual, "arn:aws:sns:us-east-1:1:fraud")
				So(pub.sent[0].subject, ShouldEqual, "FRAUD ALERT!!!")
				So(pub.sent[0].message, ShouldEqual, "FRAUD ALERT DETECTED: 120,3.5,0,38.9,-77.3,1,0.91\n")
			})
		})

		Convey("When the same record is reported twice", func() {
			So(d.Fraud(ctx, "rec-1", []byte("a")), ShouldBeNil)
			So(d.Fraud(ctx, "rec-1", []byte("a")), ShouldBeNil)

			Convey("Then only one alert is published", func() {
				So(pub.count(), ShouldEqual, 1)
			})
		})

		Convey("When publishing fails", func() {
			pub.err = errors.New("throttled by sns")
			err := d.Fraud(ctx, "rec-2", []byte("a"))

			Convey("Then the error is returned and the record can be retried", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "throttled by sns")
				pub.err = nil
				So(d.Fraud(ctx, "rec-2", []byte("a")), ShouldBeNil)
				So(pub.count(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a dispatcher without topics", t, func() {
		pub := &recordingPublisher{}
		d := alert.NewDispatcher(pub)

		Convey("Then no alert is ever published", func() {
			So(d.Fraud(ctx, "rec-1", []byte("a")), ShouldBeNil)
			So(d.Failure(ctx, model.Invocation{ARN: "fn"}, errors.New("boom")), ShouldBeNil)
			So(pub.count(), ShouldEqual, 0)
		})
	})
}

func TestDispatcherFailure(t *testing.T) {
	ctx := context.Background()

	Convey("Given a dispatcher with a failure topic", t, func() {
		pub := &recordingPublisher{}
		d := alert.NewDispatcher(pub, alert.WithFailureTopic("arn:aws:sns:us-east-1:1:failure"))
		inv := model.Invocation{ID: "inv-1", ARN: "arn:aws:lambda:us-east-1:1:function:transform"}

		Convey("When the same failure repeats", func() {
			cause := pkgerrors.New("No predictions were returned")
			So(d.Failure(ctx, inv, cause), ShouldBeNil)
			So(d.Failure(ctx, inv, cause), ShouldBeNil)

			Convey("Then every failure is published with the invoker in the subject", func() {
				So(pub.count(), ShouldEqual, 2)
				So(pub.sent[0].subject, ShouldEqual, "Lambda Execution Failure: arn:aws:lambda:us-east-1:1:function:transform")
				So(pub.sent[0].message, ShouldStartWith, "No predictions were returned\n")
				So(pub.sent[0].message, ShouldContainSubstring, "dispatcher_test.go")
			})
		})
	})
}

func TestFailureMessage(t *testing.T) {
	Convey("Given errors with and without stacks", t, func() {
		Convey("Then a plain error renders as its message", func() {
			So(alert.FailureMessage(errors.New("boom")), ShouldEqual, "boom")
		})

		Convey("Then a stacked error renders message then frames", func() {
			msg := alert.FailureMessage(pkgerrors.WithStack(errors.New("boom")))
			lines := strings.Split(msg, "\n")
			So(lines[0], ShouldEqual, "boom")
			So(len(lines), ShouldBeGreaterThan, 2)
			So(msg, ShouldContainSubstring, "TestFailureMessage")
		})

		Convey("Then nil renders empty", func() {
			So(alert.FailureMessage(nil), ShouldEqual, "")
		})
	})
}
