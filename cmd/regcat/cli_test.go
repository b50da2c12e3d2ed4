package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

const regsCSV = `address,name,type,unit,groups,desc_en_US,desc_de_DE
0x0010,power,int32:2,W,"grid, main",Active power,Wirkleistung
0x0000,voltage,uint16,V,main,Grid voltage,Netzspannung
0x0002,mode,int16::ENUM,"0: OFF
1: ON",status,Operating mode,Betriebsart
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, vars map[string]string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	e := env{getenv: func(k string) string { return vars[k] }}
	code := run(context.Background(), args, e, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

type document struct {
	Catalog struct {
		Source string `json:"source" yaml:"source"`
		Count  int    `json:"count" yaml:"count"`
	} `json:"catalog" yaml:"catalog"`
	Registers []struct {
		Address     string `json:"address" yaml:"address"`
		Name        string `json:"name" yaml:"name"`
		Description string `json:"description" yaml:"description"`
	} `json:"registers" yaml:"registers"`
}

func (d document) names() []string {
	out := make([]string, len(d.Registers))
	for i, r := range d.Registers {
		out[i] = r.Name
	}
	return out
}

func TestRun_Text(t *testing.T) {
	path := writeFile(t, "regs.csv", regsCSV)

	code, stdout, stderr := runCLI(t, nil, path)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[0], "ADDRESS") {
		t.Errorf("header = %q", lines[0])
	}
	for i, want := range []string{"voltage", "mode", "power"} {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("line %d = %q, want %s", i+1, lines[i+1], want)
		}
	}
	if !strings.Contains(lines[3], "int32[2]") {
		t.Errorf("power line = %q, want int32[2]", lines[3])
	}
}

func TestRun_JSONWithGroups(t *testing.T) {
	path := writeFile(t, "regs.csv", regsCSV)

	code, stdout, stderr := runCLI(t, nil, "-format", "json", "-g", "status,grid&main", path)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	var doc document
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if diff := cmp.Diff([]string{"mode", "power"}, doc.names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if doc.Registers[1].Address != "0x0010" {
		t.Errorf("address = %q, want 0x0010", doc.Registers[1].Address)
	}
}

func TestRun_YAMLWithLang(t *testing.T) {
	path := writeFile(t, "regs.csv", regsCSV)

	code, stdout, stderr := runCLI(t, map[string]string{"REGCAT_LANG": "en_US"}, "-format", "yml", "-lang", "de_DE", path)
	if code != exitOK {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	var doc document
	if err := yaml.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, stdout)
	}
	if doc.Catalog.Count != 3 || doc.Catalog.Source != path {
		t.Errorf("catalog = %+v", doc.Catalog)
	}
	if doc.Registers[0].Description != "Netzspannung" {
		t.Errorf("description = %q, want Netzspannung", doc.Registers[0].Description)
	}
}

func TestRun_Dialect(t *testing.T) {
	semicolon := "address;name;type;unit\n1;alpha;uint16;A\n# comment\n0;beta;uint16;B\n"
	path := writeFile(t, "regs.csv", semicolon)

	t.Run("environment", func(t *testing.T) {
		vars := map[string]string{"CSV_DELIMITER": ";", "CSV_COMMENT": "#"}
		code, stdout, stderr := runCLI(t, vars, path)
		if code != exitOK {
			t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
		}
		if !strings.Contains(stdout, "beta") || !strings.Contains(stdout, "alpha") {
			t.Errorf("output:\n%s", stdout)
		}
	})

	t.Run("flags override environment", func(t *testing.T) {
		vars := map[string]string{"CSV_DELIMITER": "|"}
		code, stdout, stderr := runCLI(t, vars, "-delimiter", ";", "-comment", "#", path)
		if code != exitOK {
			t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
		}
		if strings.Count(stdout, "\n") != 3 {
			t.Errorf("output:\n%s", stdout)
		}
	})
}

func TestRun_ExitCodes(t *testing.T) {
	regs := writeFile(t, "regs.csv", regsCSV)
	headerless := writeFile(t, "bad.csv", "name,type\nx,int16\n")
	badRow := writeFile(t, "row.csv", "address,name,type,unit\n0,a,uint16,V\n1,b,bogus,V\n")

	tests := []struct {
		name       string
		vars       map[string]string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{name: "help", args: []string{"-h"}, wantCode: exitOK, wantStderr: "Usage: regcat"},
		{name: "no file", args: nil, wantCode: exitUsage, wantStderr: "expected one register file"},
		{name: "two files", args: []string{regs, regs}, wantCode: exitUsage, wantStderr: "got 2 arguments"},
		{name: "unknown flag", args: []string{"-verbose", regs}, wantCode: exitUsage, wantStderr: "flag provided but not defined"},
		{name: "bad format", args: []string{"-format", "xml", regs}, wantCode: exitUsage, wantStderr: "unknown output format"},
		{name: "bad groups", args: []string{"-g", "a-b", regs}, wantCode: exitUsage, wantStderr: "invalid group"},
		{name: "bad delimiter", args: []string{"-delimiter", ";;", regs}, wantCode: exitUsage, wantStderr: "CSV_DELIMITER"},
		{name: "bad log level flag", args: []string{"-log-level", "loud", regs}, wantCode: exitUsage, wantStderr: "LOG_LEVEL"},
		{name: "save without database", args: []string{"-save", regs}, wantCode: exitUsage, wantStderr: "DATABASE_URL"},
		{
			name:       "bad environment",
			vars:       map[string]string{"LOG_LEVEL": "loud"},
			args:       []string{regs},
			wantCode:   exitError,
			wantStderr: "config validation",
		},
		{name: "missing file", args: []string{filepath.Join(t.TempDir(), "none.csv")}, wantCode: exitError, wantStderr: "FILE003"},
		{name: "missing columns", args: []string{headerless}, wantCode: exitError, wantStderr: "HDR001"},
		{name: "bad row", args: []string{badRow}, wantCode: exitError, wantStderr: "at line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.vars, tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr:\n%s", code, tt.wantCode, stderr)
			}
			if !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantStderr)
			}
			if tt.wantCode != exitOK && stdout != "" {
				t.Errorf("stdout = %q, want nothing on failure", stdout)
			}
		})
	}
}

type fakeServer struct {
	started  chan struct{}
	stop     chan struct{}
	startErr error
	shutdown bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{started: make(chan struct{}), stop: make(chan struct{})}
}

func (f *fakeServer) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	close(f.started)
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdown = true
	close(f.stop)
	return nil
}

func TestServe_ShutdownOnCancel(t *testing.T) {
	srv := newFakeServer()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-srv.started
		cancel()
	}()

	if err := serve(ctx, srv, time.Second); err != nil {
		t.Fatalf("serve() error = %v", err)
	}
	if !srv.shutdown {
		t.Error("Shutdown was not called")
	}
}

func TestServe_StartFailure(t *testing.T) {
	srv := newFakeServer()
	srv.startErr = errors.New("listen tcp 127.0.0.1:8080: bind: address already in use")

	err := serve(context.Background(), srv, time.Second)
	if !errors.Is(err, srv.startErr) {
		t.Fatalf("serve() error = %v, want start failure", err)
	}
	if srv.shutdown {
		t.Error("Shutdown called after failed start")
	}
}
