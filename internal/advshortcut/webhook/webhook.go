package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/advshortcut/conf"
	"github.com/sjzar/advshortcut/internal/model"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	queueSize = 16
)

type Config interface {
	GetWebhook() *conf.Webhook
}

type Webhook interface {
	Do(ctx context.Context, result model.ExecutionResult) error
}

type Service struct {
	config *conf.Webhook
	hooks  map[string][]*conf.WebhookItem

	mu     sync.Mutex
	groups []*Group
}

func New(config Config) *Service {
	s := &Service{
		config: config.GetWebhook(),
	}

	if s.config == nil {
		return s
	}

	hooks := make(map[string][]*conf.WebhookItem)
	for _, item := range s.config.Items {
		if item == nil || item.Disabled {
			continue
		}
		if item.Type == "" {
			item.Type = conf.WebhookTypeExecution
		}
		switch item.Type {
		case conf.WebhookTypeExecution:
			hooks[item.Type] = append(hooks[item.Type], item)
		default:
			log.Error().Msgf("unknown webhook type: %s", item.Type)
		}
	}
	s.hooks = hooks

	return s
}

// Enabled reports whether at least one webhook is configured.
func (s *Service) Enabled() bool {
	return len(s.hooks) != 0
}

// Start spawns one delivery loop per webhook type. The loops end with ctx.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.hooks) == 0 || s.groups != nil {
		return
	}
	for group, items := range s.hooks {
		hooks := make([]Webhook, 0, len(items))
		for _, item := range items {
			hooks = append(hooks, NewExecutionWebhook(item))
		}
		s.groups = append(s.groups, NewGroup(ctx, group, hooks, s.config.DelayMs))
	}
}

// Notify queues result for delivery; it never blocks the caller.
func (s *Service) Notify(result model.ExecutionResult) {
	s.mu.Lock()
	groups := s.groups
	s.mu.Unlock()
	for _, g := range groups {
		g.Callback(result)
	}
}

type Group struct {
	ctx     context.Context
	group   string
	hooks   []Webhook
	delayMs int64
	ch      chan model.ExecutionResult
}

func NewGroup(ctx context.Context, group string, hooks []Webhook, delayMs int64) *Group {
	g := &Group{
		group:   group,
		hooks:   hooks,
		delayMs: delayMs,
		ctx:     ctx,
		ch:      make(chan model.ExecutionResult, queueSize),
	}
	go g.loop()
	return g
}

func (g *Group) Callback(result model.ExecutionResult) {
	select {
	case g.ch <- result:
	default:
		log.Warn().Str("group", g.group).Str("shortcut", result.ShortcutID).Msg("webhook queue full, result dropped")
	}
}

func (g *Group) Group() string {
	return g.group
}

func (g *Group) loop() {
	for {
		select {
		case result := <-g.ch:
			if g.delayMs > 0 {
				select {
				case <-time.After(time.Duration(g.delayMs) * time.Millisecond):
				case <-g.ctx.Done():
					return
				}
			}
			g.do(result)
		case <-g.ctx.Done():
			return
		}
	}
}

func (g *Group) do(result model.ExecutionResult) {
	for _, hook := range g.hooks {
		go func(hook Webhook) {
			if err := hook.Do(g.ctx, result); err != nil {
				log.Error().Err(err).Str("group", g.group).Msg("webhook failed")
			}
		}(hook)
	}
}

// Payload is the JSON body posted for every matching run.
type Payload struct {
	Shortcut string   `json:"shortcut"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Logs     []string `json:"logs"`
	Error    string   `json:"error,omitempty"`
	Time     string   `json:"time"`
}

func NewPayload(result model.ExecutionResult) Payload {
	p := Payload{
		Shortcut: result.ShortcutID,
		Name:     result.Name,
		Status:   StatusSuccess,
		Logs:     result.Logs,
		Error:    result.Error,
		Time:     result.FinishedAt,
	}
	if !result.Success {
		p.Status = StatusError
	}
	if p.Logs == nil {
		p.Logs = []string{}
	}
	return p
}

type ExecutionWebhook struct {
	conf   *conf.WebhookItem
	client *http.Client
}

func NewExecutionWebhook(conf *conf.WebhookItem) *ExecutionWebhook {
	return &ExecutionWebhook{
		conf:   conf,
		client: &http.Client{Timeout: time.Second * 10},
	}
}

// Match applies the item's shortcut and status filters.
func (e *ExecutionWebhook) Match(result model.ExecutionResult) bool {
	if e.conf.Shortcut != "" && e.conf.Shortcut != result.ShortcutID && !strings.EqualFold(e.conf.Shortcut, result.Name) {
		return false
	}
	if e.conf.Status != "" && !strings.EqualFold(e.conf.Status, NewPayload(result).Status) {
		return false
	}
	return true
}

func (e *ExecutionWebhook) Do(ctx context.Context, result model.ExecutionResult) error {
	if !e.Match(result) {
		return nil
	}

	body, err := json.Marshal(NewPayload(result))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.conf.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug().Str("url", e.conf.URL).Str("shortcut", result.ShortcutID).Msg("post execution result")
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post %s: status code %d", e.conf.URL, resp.StatusCode)
	}
	return nil
}
