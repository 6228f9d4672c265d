package host

import (
	"context"
	"strings"
	"sync"

	"github.com/sjzar/advshortcut/internal/model"
)

// PendingRequest holds the execution request given on the command line until
// it is cleared.
type PendingRequest struct {
	mu  sync.Mutex
	req *model.PendingExecutionRequest
}

// NewPendingRequest builds the holder from the command line flags; an empty
// id means there is no request.
func NewPendingRequest(shortcutID string, closeAfter, showProgress bool) *PendingRequest {
	p := &PendingRequest{}
	if id := strings.TrimSpace(shortcutID); id != "" {
		p.req = &model.PendingExecutionRequest{
			ShortcutID:          id,
			CloseAfterExecution: closeAfter,
			ShowProgressWindow:  showProgress,
		}
	}
	return p
}

// Pending returns a copy of the request, or nil.
func (p *PendingRequest) Pending(ctx context.Context) (*model.PendingExecutionRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.req == nil {
		return nil, nil
	}
	req := *p.req
	return &req, nil
}

func (p *PendingRequest) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.req = nil
}
