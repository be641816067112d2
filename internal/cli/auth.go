package cli

import (
	"bufio"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/ui"
)

const authUsage = "usage: tada auth <login|logout|status|whoami>"

func (r *runner) doAuth(args []string) int {
	if len(args) != 1 {
		ui.Fail(authUsage)
		return 2
	}
	switch args[0] {
	case "login":
		return r.doAuthLogin()
	case "logout":
		return r.doAuthLogout()
	case "status":
		return r.doAuthStatus()
	case "whoami":
		return r.doAuthWhoAmI()
	}
	ui.Fail(authUsage)
	return 2
}

func (r *runner) doAuthLogin() int {
	fmt.Fprint(r.opt.Stdout, "Paste your token: ")
	sc := bufio.NewScanner(r.opt.Stdin)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			ui.Fail("read token: " + err.Error())
		} else {
			ui.Fail("read token: no input")
		}
		return 1
	}
	fmt.Fprintln(r.opt.Stdout)
	if err := r.tokens().Set(sc.Text()); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func (r *runner) doAuthLogout() int {
	ti, _ := r.tokens().Get()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + auth.EnvToken + " (nothing to delete)")
		return 0
	}
	if err := r.tokens().Delete(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func (r *runner) doAuthStatus() int {
	ti, err := r.tokens().Get()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	out := r.opt.Stdout
	if ti == nil {
		fmt.Fprintln(out, ui.Current().Muted.Render("not logged in"))
		fmt.Fprintln(out, "Run: tada auth login")
		return 0
	}
	fmt.Fprintf(out, "source: %s\n", ti.Source)
	fmt.Fprintf(out, "header: Authorization: %s\n", authHeader(ti.Token))
	if ti.ExpiresAt != nil {
		state := ""
		if ti.ExpiresAt.Before(time.Now()) {
			state = " " + ui.Current().Error.Render("(expired)")
		}
		fmt.Fprintf(out, "expires: %s%s\n", ti.ExpiresAt.UTC().Format(time.RFC3339), state)
	} else {
		fmt.Fprintln(out, "expires: (unknown)")
	}
	fmt.Fprintln(out, "env override: "+auth.EnvToken)
	return 0
}

// whoami decodes a JWT locally (unverified); opaque tokens print basic info.
func (r *runner) doAuthWhoAmI() int {
	ti, _ := r.tokens().Get()
	if ti == nil {
		ui.Fail("not logged in. Run: tada auth login")
		return 2
	}
	out := r.opt.Stdout
	claims, err := auth.Claims(ti.Token)
	if err != nil {
		fmt.Fprintln(out, "Opaque token (cannot introspect locally).")
		fmt.Fprintln(out, "source:", ti.Source)
		return 0
	}

	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := []string{ui.Current().Title.Render("JWT claims")}
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%-6s %v", k+":", claims[k]))
	}
	lines = append(lines, "", ui.Current().Muted.Render("source: "+ti.Source+", signature not verified"))
	ui.Panel(lines)
	return 0
}

// authHeader masks the bearer credential the API receives.
func authHeader(token string) string {
	if len(token) <= 8 {
		return "Bearer " + strings.Repeat("*", len(token))
	}
	return "Bearer " + token[:4] + "…" + token[len(token)-4:]
}
