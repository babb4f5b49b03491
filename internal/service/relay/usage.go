package relay

import (
	"fmt"
	"strings"

	"github.com/oshokin/usb-relay/internal/version"
)

// usageLines pairs each command form with its description.
//
//nolint:gochecknoglobals // Read-only table.
var usageLines = [][2]string{
	{"ENUMerate|List", "list all modules as sn(#channels)"},
	{"Query sn {sn ...}", "query all channels of the given modules"},
	{"Query sn@chlist {sn@chlist ...}", "query the listed channels, in order"},
	{"SET sn:pattern {sn:pattern ...}", "apply a pattern to channels 1..n"},
	{"SET sn ch=state {ch=state ...}", "set single channels ('*' for all) of the last module named"},
	{"ALIAS", "list aliases"},
	{"ALIAS alias=sn {alias=sn ...}", "create or rebind aliases"},
	{"ALIAS -alias {-alias ...}", "delete aliases"},
	{"Help|?", "show this text"},
}

// Usage renders the help text for program.
func Usage(program string) string {
	var sb strings.Builder

	fmt.Fprintln(&sb, version.Banner())
	fmt.Fprintln(&sb, "Usage:")

	for _, line := range usageLines {
		fmt.Fprintf(&sb, "  %s %-34s # %s\n", program, line[0], line[1])
	}

	fmt.Fprintln(&sb)
	fmt.Fprintln(&sb, "    sn      = 5-character serial number or alias")
	fmt.Fprintln(&sb, "    chlist  = channel digits, e.g. 132")
	fmt.Fprintln(&sb, "    state   = 0|1|OFF|ON|L|H|NO|NC")
	fmt.Fprintln(&sb, "    pattern = qq...  where q = 0|1|L|H (set) or X|.|_ (leave as is)")
	fmt.Fprintln(&sb, "    alias   = letters, digits and -_#@~, not starting with '-'")

	return sb.String()
}
