package ctx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type testsuite struct {
	suite.Suite
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestWithValues() {
	c := WithValues(Background(), map[string]interface{}{
		"ensName": "walrus.eth",
		"path":    "/",
	})
	ts.Equal("walrus.eth", c.Value("ensName"))
	ts.Equal("/", c.Value("path"))
}

func (ts *testsuite) TestFrom() {
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), "requestID", "r1"))
	c := From(parent)
	ts.Equal("r1", c.Value("requestID"))

	cancel()
	ts.ErrorIs(c.Err(), context.Canceled)
}

func (ts *testsuite) TestDetach() {
	parent, cancel := WithCancel(WithValue(Background(), "requestID", "r1"))
	detached := Detach(parent)
	cancel()

	ts.ErrorIs(parent.Err(), context.Canceled)
	ts.NoError(detached.Err())
	// context values are dropped, logger fields survive
	ts.Nil(detached.Value("requestID"))
	ts.Equal(parent.Logger, detached.Logger)
}

func (ts *testsuite) TestWithCancel() {
	c, cancel := WithCancel(Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		ts.Fail("not cancelled")
	}
}

func (ts *testsuite) TestTimeout() {
	c, cancel := WithTimeout(Background(), 10*time.Millisecond)
	defer cancel()

	<-c.Done()
	ts.ErrorIs(c.Err(), context.DeadlineExceeded)
}
