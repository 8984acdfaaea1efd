package assert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mj1618/desktop-harness/internal/async"
	"github.com/mj1618/desktop-harness/internal/model"
	"github.com/mj1618/desktop-harness/internal/platform"
	"github.com/mj1618/desktop-harness/internal/query"
)

// Error is a failed expectation.
type Error struct {
	Subject     string
	Description string
	Err         error // lookup or wait failure, if any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("expected %s %s", e.Subject, e.Description)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// That checks n against m. Call it on the UI goroutine.
func That(n *model.Node, m Matcher) error {
	if n == nil {
		return &Error{Subject: "<nil>", Description: "to exist"}
	}
	ok, desc := m(n)
	if ok {
		return nil
	}
	return &Error{Subject: subject(n), Description: desc}
}

// ThatSelector looks selector up in scene and checks the first match
// against m, all on the UI goroutine.
func ThatSelector(b *async.Bridge, scene platform.SceneQuery, selector string, m Matcher) error {
	_, err := async.CallOnUI(b, b.Profile().ConditionWait, func() (struct{}, error) {
		return struct{}{}, check(scene, selector, m)
	})
	return err
}

// ThatEventually polls selector against m on the UI goroutine until it
// matches or timeout elapses. A zero timeout uses the profile's
// ConditionWait. On timeout the error carries the last description seen.
func ThatEventually(ctx context.Context, b *async.Bridge, scene platform.SceneQuery, selector string, m Matcher, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = b.Profile().ConditionWait
	}
	var (
		mu   sync.Mutex
		last error
	)
	err := b.WaitForUI(ctx, timeout, func() (bool, error) {
		res := check(scene, selector, m)
		mu.Lock()
		last = res
		mu.Unlock()
		return res == nil, nil
	})
	if err == nil {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()
	var ae *Error
	if errors.As(last, &ae) {
		return &Error{Subject: ae.Subject, Description: ae.Description, Err: err}
	}
	if last != nil {
		return &Error{Subject: fmt.Sprintf("%q", selector), Description: "to match", Err: fmt.Errorf("%w (last: %v)", err, last)}
	}
	return &Error{Subject: fmt.Sprintf("%q", selector), Description: "to match", Err: err}
}

func check(scene platform.SceneQuery, selector string, m Matcher) error {
	n, err := query.FromScene(scene).Lookup(selector).Query()
	if err != nil {
		return err
	}
	if err := That(n, m); err != nil {
		var ae *Error
		if errors.As(err, &ae) {
			ae.Subject = fmt.Sprintf("%q", selector)
		}
		return err
	}
	return nil
}

func subject(n *model.Node) string {
	if n.ID != "" {
		return fmt.Sprintf("%s#%s", n.Role, n.ID)
	}
	if n.Text != "" {
		return fmt.Sprintf("%s %q", n.Role, n.Text)
	}
	return n.Role
}
