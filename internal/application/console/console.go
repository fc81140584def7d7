package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gamefilter/internal/application/admission"
	"gamefilter/internal/domain/filter"

	"github.com/rs/zerolog/log"
)

// FilterService is the part of admission.Service the console drives.
type FilterService interface {
	AddIP(ctx context.Context, pattern string, minutes *float64) error
	RemoveIP(ctx context.Context, pattern string) error
	ListIP() []filter.Listing
	WriteIP(ctx context.Context) error
	Ban(ctx context.Context, id uint64, minutes *float64) error
	RemoveBan(ctx context.Context, id uint64, threshold *float64) (int, error)
	Mute(ctx context.Context, id uint64, shadow bool, minutes *float64) error
	RemoveMute(ctx context.Context, id uint64, threshold *float64) (int, error)
	SetFilterBan(ctx context.Context, on bool) error
	FilterBan() bool
}

// Console errors
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("bad command usage")
)

type handler func(ctx context.Context, args []string) ([]string, error)

// Console parses admin command lines and runs them against a FilterService.
type Console struct {
	svc      FilterService
	commands map[string]handler
}

// New creates a console bound to svc.
func New(svc FilterService) *Console {
	c := &Console{svc: svc}
	c.commands = map[string]handler{
		"addip":      c.addIP,
		"removeip":   c.removeIP,
		"listip":     c.listIP,
		"writeip":    c.writeIP,
		"ban":        c.ban,
		"removeban":  c.removeBan,
		"mute":       c.mute,
		"removemute": c.removeMute,
		"set":        c.set,
	}
	return c
}

// Commands lists the command names the console understands, sorted.
func (c *Console) Commands() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exec runs one command line and returns the operator output. The error is
// ErrUnknownCommand, ErrUsage or nil; failures that the original server only
// reported to the operator are returned as output lines.
func (c *Console) Exec(ctx context.Context, line string) ([]string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil, nil
	}
	h, ok := c.commands[strings.ToLower(args[0])]
	if !ok {
		return []string{fmt.Sprintf("Unknown command \"%s\"", args[0])}, ErrUnknownCommand
	}
	return h(ctx, args)
}

// Replay runs saved command lines, logging their output instead of
// returning it. A bad line is logged and skipped.
func (c *Console) Replay(ctx context.Context, lines []string) error {
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := c.Exec(ctx, line)
		if err != nil {
			log.Warn().Err(err).Int("line", i+1).Str("command", line).Msg("skipping filter script line")
			continue
		}
		for _, msg := range out {
			log.Debug().Int("line", i+1).Msg(msg)
		}
	}
	return nil
}

var _ admission.Replayer = (*Console)(nil)

func usage(text string) ([]string, error) {
	return []string{"Usage: " + text}, ErrUsage
}

// parseMinutes reads an optional minutes argument at index i. Values that
// are not finite or out of range are rejected like unparsable ones.
func parseMinutes(args []string, i int) (*float64, bool) {
	if len(args) <= i {
		return nil, true
	}
	v, err := strconv.ParseFloat(args[i], 64)
	if err != nil || filter.CheckMinutes(v) != nil {
		return nil, false
	}
	return &v, true
}

// parseID reads a 64-bit identity. Anything unparsable reads as 0, which
// every identity command treats as "no player".
func parseID(s string) uint64 {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (c *Console) addIP(ctx context.Context, args []string) ([]string, error) {
	if len(args) < 2 {
		return usage("addip <ip-mask> [time-mins]")
	}
	minutes, ok := parseMinutes(args, 2)
	if !ok {
		return usage("addip <ip-mask> [time-mins]")
	}
	return c.report(c.svc.AddIP(ctx, args[1], minutes), args[1], nil), nil
}

func (c *Console) removeIP(ctx context.Context, args []string) ([]string, error) {
	if len(args) < 2 {
		return usage("removeip <ip-mask>")
	}
	return c.report(c.svc.RemoveIP(ctx, args[1]), args[1], []string{"Removed."}), nil
}

func (c *Console) listIP(_ context.Context, _ []string) ([]string, error) {
	out := []string{"Filter list:"}
	for _, l := range c.svc.ListIP() {
		var line string
		switch l.Entry.Kind {
		case filter.KindIdentity:
			line = strconv.FormatUint(l.Entry.ID, 10)
		case filter.KindAddress:
			b := l.Entry.Compare
			line = fmt.Sprintf("%3d.%3d.%3d.%3d", b[0], b[1], b[2], b[3])
		}
		if l.Remaining != nil {
			line += fmt.Sprintf(" %.2f", *l.Remaining)
		}
		out = append(out, line)
	}
	return out, nil
}

func (c *Console) writeIP(ctx context.Context, _ []string) ([]string, error) {
	return c.report(c.svc.WriteIP(ctx), "", nil), nil
}

func (c *Console) ban(ctx context.Context, args []string) ([]string, error) {
	if len(args) < 2 {
		return usage("ban <steamid64> [time-mins]")
	}
	minutes, ok := parseMinutes(args, 2)
	if !ok {
		return usage("ban <steamid64> [time-mins]")
	}
	return c.report(c.svc.Ban(ctx, parseID(args[1]), minutes), args[1], nil), nil
}

func (c *Console) mute(ctx context.Context, args []string) ([]string, error) {
	if len(args) < 2 {
		return usage("mute <steamid64> <shadow 0/1> [time-mins]")
	}
	shadow := false
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return usage("mute <steamid64> <shadow 0/1> [time-mins]")
		}
		shadow = n != 0
	}
	minutes, ok := parseMinutes(args, 3)
	if !ok {
		return usage("mute <steamid64> <shadow 0/1> [time-mins]")
	}
	return c.report(c.svc.Mute(ctx, parseID(args[1]), shadow, minutes), args[1], nil), nil
}

func (c *Console) removeBan(ctx context.Context, args []string) ([]string, error) {
	return c.removeIdentity(ctx, args, "removeban <steamid64>", c.svc.RemoveBan)
}

func (c *Console) removeMute(ctx context.Context, args []string) ([]string, error) {
	return c.removeIdentity(ctx, args, "removemute <steamid64>", c.svc.RemoveMute)
}

func (c *Console) removeIdentity(ctx context.Context, args []string, text string,
	remove func(context.Context, uint64, *float64) (int, error)) ([]string, error) {
	if len(args) < 2 {
		return usage(text)
	}
	threshold, ok := parseMinutes(args, 2)
	if !ok {
		return usage(text)
	}
	n, err := remove(ctx, parseID(args[1]), threshold)
	var out []string
	for i := 0; i < n; i++ {
		out = append(out, "Removed.")
	}
	return append(out, c.report(err, args[1], nil)...), nil
}

func (c *Console) set(ctx context.Context, args []string) ([]string, error) {
	if len(args) < 2 {
		return usage("set <variable> <value>")
	}
	if !strings.EqualFold(args[1], "filterban") {
		return []string{fmt.Sprintf("Unknown variable \"%s\"", args[1])}, ErrUsage
	}
	if len(args) < 3 {
		return []string{fmt.Sprintf("\"filterban\" is \"%d\"", boolToInt(c.svc.FilterBan()))}, nil
	}
	n, err := strconv.Atoi(args[2])
	if err != nil {
		return usage("set filterban <0|1>")
	}
	return c.report(c.svc.SetFilterBan(ctx, n != 0), "", nil), nil
}

// report turns a service error into operator messages. Success yields ok.
func (c *Console) report(err error, arg string, ok []string) []string {
	if err == nil {
		return ok
	}
	var out []string
	switch {
	case errors.Is(err, filter.ErrZeroIdentity):
		// missing or invalid id: silently ignored
	case errors.Is(err, filter.ErrFull):
		out = append(out, "IP filter list is full")
	}
	if errors.Is(err, filter.ErrInvalidPattern) {
		out = append(out, fmt.Sprintf("Bad filter address: %s", arg))
	}
	if errors.Is(err, filter.ErrNotFound) {
		out = append(out, fmt.Sprintf("Didn't find %s.", arg))
	}
	if errors.Is(err, admission.ErrPersist) {
		out = append(out, "Couldn't write filter list.")
	}
	if len(out) == 0 && !errors.Is(err, filter.ErrZeroIdentity) {
		out = append(out, err.Error())
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
