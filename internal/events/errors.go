package events

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// Cause says why a publisher could not connect.
type Cause int

const (
	CauseSocketMissing Cause = iota
	CausePermission
	CauseRefused
	CauseUnreachable
)

// Unavailable explains a failed publisher Connect in operator terms.
type Unavailable struct {
	Cause Cause
	// Transport is "socket" for the daemon client and "redis" for pub/sub.
	Transport string
	Message   string
	Hint      string
	Err       error
}

func (u *Unavailable) Error() string {
	if u.Hint != "" {
		return u.Message + ". " + u.Hint
	}
	return u.Message
}

func (u *Unavailable) Unwrap() error {
	return u.Err
}

// Diagnose classifies err, returned by p.Connect. It returns nil for a nil err.
func Diagnose(p EventPublisher, err error) *Unavailable {
	if err == nil {
		return nil
	}
	if rp, ok := p.(*RedisPublisher); ok {
		return diagnoseRedis(rp, err)
	}

	socket := "the daemon socket"
	if c, ok := p.(*Client); ok {
		socket = c.socketPath
	}
	u := &Unavailable{Transport: "socket", Err: err}
	switch {
	case errors.Is(err, os.ErrNotExist):
		u.Cause = CauseSocketMissing
		u.Message = fmt.Sprintf("no daemon socket at %s", socket)
		u.Hint = "start projecthub-daemon or clear daemon.socket"
	case errors.Is(err, os.ErrPermission):
		u.Cause = CausePermission
		u.Message = fmt.Sprintf("permission denied on %s", socket)
		u.Hint = "the socket directory must be owned by this user with mode 0700"
	case errors.Is(err, syscall.ECONNREFUSED):
		u.Cause = CauseRefused
		u.Message = fmt.Sprintf("nothing is listening on %s", socket)
		u.Hint = "the socket is stale, restart projecthub-daemon"
	default:
		u.Cause = CauseUnreachable
		u.Message = "daemon did not accept the subscription"
		u.Hint = "restart projecthub-daemon"
	}
	return u
}

func diagnoseRedis(p *RedisPublisher, err error) *Unavailable {
	u := &Unavailable{Transport: "redis", Err: err, Cause: CauseUnreachable}
	addr := p.client.Options().Addr
	if errors.Is(err, syscall.ECONNREFUSED) {
		u.Cause = CauseRefused
		u.Message = fmt.Sprintf("redis refused the connection at %s", addr)
	} else {
		u.Message = fmt.Sprintf("redis at %s did not answer", addr)
	}
	u.Hint = "check redis.url or turn off redis.events"
	return u
}
