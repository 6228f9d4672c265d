package ctx

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/advshortcut/conf"
	"github.com/sjzar/advshortcut/pkg/config"
	"github.com/sjzar/advshortcut/pkg/util"
)

// Context holds the runtime state shown by the terminal UI. Settings changed
// at runtime are written back to the config file.
type Context struct {
	conf *conf.Config
	cm   *config.Manager
	mu   sync.RWMutex

	ConfigDir   string
	DataDir     string
	DataUsage   string
	StorageType string
	StoragePath string

	HTTPEnabled bool
	HTTPAddr    string

	UpdateStatus string
	LastRun      string
}

func New(c *conf.Config, cm *config.Manager) *Context {
	ctx := &Context{
		conf:        c,
		cm:          cm,
		ConfigDir:   c.ConfigDir,
		DataDir:     c.GetDataDir(),
		StorageType: c.Storage.Type,
		HTTPEnabled: c.HTTP.Enabled,
		HTTPAddr:    c.GetHTTPAddr(),
	}
	ctx.Refresh()
	return ctx
}

// Snapshot returns a copy that is safe to read without the lock.
func (c *Context) Snapshot() Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Context{
		ConfigDir:    c.ConfigDir,
		DataDir:      c.DataDir,
		DataUsage:    c.DataUsage,
		StorageType:  c.StorageType,
		StoragePath:  c.StoragePath,
		HTTPEnabled:  c.HTTPEnabled,
		HTTPAddr:     c.HTTPAddr,
		UpdateStatus: c.UpdateStatus,
		LastRun:      c.LastRun,
	}
}

// Refresh recomputes the data dir usage in the background.
func (c *Context) Refresh() {
	c.mu.RLock()
	dir := c.DataDir
	c.mu.RUnlock()
	if dir == "" {
		return
	}
	go func() {
		usage := util.GetDirSize(dir)
		c.mu.Lock()
		c.DataUsage = usage
		c.mu.Unlock()
	}()
}

func (c *Context) GetHTTPAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.HTTPAddr
}

func (c *Context) GetDataDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.DataDir
}

func (c *Context) SetStorage(kind, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.StorageType = kind
	c.StoragePath = path
}

func (c *Context) SetHTTPEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.HTTPEnabled = enabled
	c.conf.HTTP.Enabled = enabled
	c.updateConfig("http.enabled", enabled)
}

func (c *Context) SetHTTPAddr(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.HTTPAddr = addr
	c.conf.HTTP.Addr = addr
	c.updateConfig("http.addr", addr)
}

func (c *Context) SetUpdateStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.UpdateStatus = status
}

func (c *Context) SetLastRun(summary string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastRun = summary
}

func (c *Context) updateConfig(key string, value any) {
	if c.cm == nil {
		return
	}
	if err := c.cm.SetConfig(key, value); err != nil {
		log.Err(err).Str("key", key).Msg("save config failed")
	}
}
