package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/mitchellh/mapstructure"
)

type testConf struct {
	Name  string `mapstructure:"name"`
	Inner struct {
		Addr    string `mapstructure:"addr"`
		Enabled bool   `mapstructure:"enabled"`
	} `mapstructure:"inner"`
	Skip string `mapstructure:"-"`
}

func TestStructKeys(t *testing.T) {
	keys := structKeys(reflect.TypeOf(&testConf{}), "")
	want := map[string]bool{"name": true, "inner.addr": true, "inner.enabled": true}
	if len(keys) != len(want) {
		t.Fatalf("structKeys() = %v", keys)
	}
	for _, k := range keys {
		if !want[k] {
			t.Errorf("unexpected key %q", k)
		}
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CFGTEST_INNER_ADDR", "127.0.0.1:9000")

	m, err := New("cfgtest", dir, "", "CFGTEST", false)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	conf := &testConf{}
	SetDefaults(m.Viper, conf, map[string]any{"name": "default", "inner.addr": "0.0.0.0:1"})
	if err := m.Load(conf); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if conf.Name != "default" {
		t.Errorf("Name = %q, want default", conf.Name)
	}
	if conf.Inner.Addr != "127.0.0.1:9000" {
		t.Errorf("Inner.Addr = %q, want env value", conf.Inner.Addr)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("CFGTEST_DOTENV=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CFGTEST_DOTENV", "")
	os.Unsetenv("CFGTEST_DOTENV")

	LoadDotEnv(filepath.Join(dir, "missing.env"), path)
	if got := os.Getenv("CFGTEST_DOTENV"); got != "from-file" {
		t.Errorf("CFGTEST_DOTENV = %q", got)
	}
}

func TestWriteConfigCreatesFile(t *testing.T) {
	dir := t.TempDir()
	m, err := New("cfgtest", dir, "", "", true)
	if err != nil {
		t.Fatal(err)
	}
	conf := &testConf{}
	SetDefaults(m.Viper, conf, map[string]any{"name": "x"})
	if err := m.Load(conf); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "cfgtest.json")); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}

func TestPrepareDirRejectsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := PrepareDir(f); err != ErrInvalidDirectory {
		t.Errorf("PrepareDir() = %v, want ErrInvalidDirectory", err)
	}
}

type hookItem struct {
	URL      string `mapstructure:"url"`
	Disabled bool   `mapstructure:"disabled"`
}

type hookConf struct {
	Wait  time.Duration `mapstructure:"wait"`
	Hooks *struct {
		DelayMs int64       `mapstructure:"delay_ms"`
		Items   []*hookItem `mapstructure:"items"`
	} `mapstructure:"hooks"`
}

func TestEnvBracketSlice(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CFGHOOK_WAIT", "3s")
	t.Setenv("CFGHOOK_HOOKS_ITEMS", `[{"url":"http://a"},{"url":"http://b","disabled":true}]`)

	m, err := New("cfghook", dir, "", "CFGHOOK", false)
	if err != nil {
		t.Fatal(err)
	}
	conf := &hookConf{}
	SetDefaults(m.Viper, conf, nil)
	if err := m.Load(conf); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if conf.Wait != 3*time.Second {
		t.Errorf("Wait = %v", conf.Wait)
	}
	if conf.Hooks == nil || len(conf.Hooks.Items) != 2 {
		t.Fatalf("Hooks = %+v", conf.Hooks)
	}
	if conf.Hooks.Items[0].URL != "http://a" || !conf.Hooks.Items[1].Disabled {
		t.Errorf("Items = %+v %+v", conf.Hooks.Items[0], conf.Hooks.Items[1])
	}
}

func TestStringToStructHook(t *testing.T) {
	var out struct {
		Item  hookItem  `mapstructure:"item"`
		Ptr   *hookItem `mapstructure:"ptr"`
		Plain string    `mapstructure:"plain"`
	}
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: StringToStructHookFunc(),
		Result:     &out,
	})
	if err != nil {
		t.Fatal(err)
	}
	in := map[string]interface{}{
		"item":  `{"url":"http://a"}`,
		"ptr":   `{"url":"http://b","disabled":true}`,
		"plain": `{"kept":"as string"}`,
	}
	if err := d.Decode(in); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.Item.URL != "http://a" {
		t.Errorf("Item = %+v", out.Item)
	}
	if out.Ptr == nil || out.Ptr.URL != "http://b" || !out.Ptr.Disabled {
		t.Errorf("Ptr = %+v", out.Ptr)
	}
	if out.Plain != `{"kept":"as string"}` {
		t.Errorf("Plain = %q", out.Plain)
	}
}

func TestBracketSliceHookPassesNonArrays(t *testing.T) {
	var out struct {
		Names []string `mapstructure:"names"`
	}
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       StringToSliceWithBracketHookFunc(),
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Decode(map[string]interface{}{"names": `["a","b"]`}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Names, []string{"a", "b"}) {
		t.Errorf("Names = %v", out.Names)
	}
	out.Names = nil
	if err := d.Decode(map[string]interface{}{"names": "solo"}); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(out.Names, []string{"solo"}) {
		t.Errorf("Names = %v", out.Names)
	}
}
