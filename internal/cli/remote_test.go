package cli

import (
	"net"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	apihttp "stripchess/internal/http"
	"stripchess/internal/processor"
	"stripchess/internal/service"
)

func startServer(t *testing.T) string {
	t.Helper()
	svc, err := service.New(service.Config{MaxDepth: 4, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatal(err)
	}
	proc, err := processor.New(svc, 1, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	app := apihttp.NewFiberApp(proc, svc, true)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go app.Listener(ln)
	t.Cleanup(func() {
		app.Shutdown()
		proc.Close()
	})
	return "http://" + ln.Addr().String()
}

func TestRemote(t *testing.T) {
	url := startServer(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"health"}, "healthy storage=disabled"},
		{[]string{"moves"}, "4 legal: (4,6) (4,7) (5,6) (5,7)"},
		{[]string{"classify", "-record", "K..b...........k w 0 1"}, "draw (stalemate)"},
		{[]string{"apply", "-move", "4-7"}, "KQRB.P.N..pnbrqk b 1 1"},
		{[]string{"analyze", "-record", "K..........N.P.k w 0 1", "-depth", "1"}, "line 13-14"},
		{[]string{"submit", "-record", "K..........N.P.k w 0 1", "-depth", "3"}, "line 13-14"},
	}
	for _, tt := range tests {
		args := append([]string{"remote", tt.args[0], "-url", url}, tt.args[1:]...)
		out := mustRun(t, args...)
		if !strings.Contains(out, tt.want) {
			t.Errorf("%v:\n%s\nwant %q", tt.args, out, tt.want)
		}
	}

	if _, err := run(t, "remote", "apply", "-url", url, "-move", "0-1"); err == nil {
		t.Error("illegal remote move should fail")
	}
	if _, err := run(t, "remote", "bogus", "-url", url); err == nil {
		t.Error("unknown operation should fail")
	}
}
