package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/usb-relay/internal/domain/relay"
)

// fakeResolver resolves a fixed alias table and passes serial numbers through.
type fakeResolver struct {
	aliases map[string]string
	err     error
}

func (f *fakeResolver) Resolve(_ context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}

	token = relay.Normalize(token)

	if sn, ok := f.aliases[token]; ok {
		return sn, nil
	}

	if relay.IsSerialNumber(token) {
		return token, nil
	}

	return "", nil
}

// newTestParser builds a parser over ABCDE(4), QWERT(8) and ZXCVB(2).
// calls counts catalog requests.
func newTestParser(calls *int) *Parser {
	resolver := &fakeResolver{aliases: map[string]string{"PUMP": "ABCDE", "LIGHTS": "QWERT"}}

	return New(resolver, func(context.Context) (*relay.Catalog, error) {
		if calls != nil {
			*calls++
		}

		return relay.NewCatalog([]relay.Module{
			{SerialNumber: "ABCDE", Channels: 4},
			{SerialNumber: "QWERT", Channels: 8},
			{SerialNumber: "ZXCVB", Channels: 2},
		}), nil
	})
}

func parse(t *testing.T, args ...string) (Command, error) {
	t.Helper()

	return newTestParser(nil).Parse(context.Background(), args)
}

func TestParse_CommandWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want Command
	}{
		{args: nil, want: Help{}},
		{args: []string{"help"}, want: Help{}},
		{args: []string{"H"}, want: Help{}},
		{args: []string{"?"}, want: Help{}},
		{args: []string{"/?"}, want: Help{}},
		{args: []string{"-Help"}, want: Help{}},
		{args: []string{"enum"}, want: Enumerate{}},
		{args: []string{"Enumerate"}, want: Enumerate{}},
		{args: []string{"l"}, want: Enumerate{}},
		{args: []string{"LIST"}, want: Enumerate{}},
		{args: []string{"alias"}, want: Alias{Edits: []relay.AliasEdit{}}},
	}

	for _, tt := range tests {
		got, err := parse(t, tt.args...)
		require.NoError(t, err, tt.args)
		require.Equal(t, tt.want, got, tt.args)
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	t.Parallel()

	tests := [][]string{
		{"bogus"},
		{"help", "me"},
		{"//h"},
		{"list", "ABCDE"},
		{"set"},
		{"query"},
		{"set", "9=ON"},
		{"set", "=ON"},
		{"set", "ABCDE", "9=ON"},
		{"set", "ABCDE", "1=MAYBE"},
		{"set", "ABCDE", "1=X"},
		{"set", "ABCDE:10Z1"},
		{"set", "ABCDE:"},
		{"query", "ABCDE=1"},
		{"alias", "ABCDE"},
		{"alias", "-"},
		{"alias", "--X"},
		{"alias", "PUMP=ABC"},
	}

	for _, args := range tests {
		_, err := parse(t, args...)
		require.ErrorIs(t, err, relay.ErrSyntax, args)
		require.Equal(t, relay.ExitSyntax, relay.ExitCode(err), args)
	}
}

func TestParse_SetPattern(t *testing.T) {
	t.Parallel()

	got, err := parse(t, "SET", "ABCDE:10X1")
	require.NoError(t, err)

	set, ok := got.(Set)
	require.True(t, ok)
	require.Equal(t, relay.SetPlan{
		"ABCDE": {1: relay.On, 2: relay.Off, 3: relay.NoChange, 4: relay.On},
	}, set.Plan)
}

func TestParse_SetPatternTooLong(t *testing.T) {
	t.Parallel()

	_, err := parse(t, "SET", "QWERT:000000000")
	require.ErrorIs(t, err, relay.ErrInvalidChannel)

	_, err = parse(t, "SET", "ABCDE:00000")
	require.ErrorIs(t, err, relay.ErrInvalidChannel)

	_, err = parse(t, "SET", "NOPE1:000000000")
	require.ErrorIs(t, err, relay.ErrBadSerialNumber)
}

func TestParse_SetChannels(t *testing.T) {
	t.Parallel()

	got, err := parse(t, "set", "pump", "1=on", "*=off", "lights:1", "zxcvb", "2=H", "abcde", "4=nc")
	require.NoError(t, err)

	set, ok := got.(Set)
	require.True(t, ok)
	require.Equal(t, relay.SetPlan{
		"ABCDE": {relay.AllChannels: relay.Off, 1: relay.On, 4: relay.Off},
		"QWERT": {1: relay.On},
		"ZXCVB": {2: relay.On},
	}, set.Plan)
}

func TestParse_SetPatternReplacesEarlierChannels(t *testing.T) {
	t.Parallel()

	got, err := parse(t, "set", "ABCDE", "1=ON", "2=ON", "ABCDE:X0", "3=1")
	require.NoError(t, err)

	set, ok := got.(Set)
	require.True(t, ok)
	require.Equal(t, relay.ChannelStates{1: relay.NoChange, 2: relay.Off, 3: relay.On}, set.Plan["ABCDE"])
}

func TestParse_SetErrors(t *testing.T) {
	t.Parallel()

	_, err := parse(t, "set", "ZXCVB", "3=ON")
	require.ErrorIs(t, err, relay.ErrInvalidChannel)

	_, err = parse(t, "set", "GHOST", "1=ON")

	var badSerial *relay.BadSerialNumberError

	require.ErrorAs(t, err, &badSerial)
	require.Equal(t, "GHOST", badSerial.SerialNumber)
	require.Equal(t, "Serial number GHOST not found", relay.Diagnostic(err))

	// First error wins.
	_, err = parse(t, "set", "ABCDE", "8=ON", "GHOST")
	require.ErrorIs(t, err, relay.ErrInvalidChannel)
}

func TestParse_Query(t *testing.T) {
	t.Parallel()

	got, err := parse(t, "q", "pump", "LIGHTS@817", "zxcvb:2")
	require.NoError(t, err)

	query, ok := got.(Query)
	require.True(t, ok)
	require.Equal(t, []relay.Query{
		{SerialNumber: "ABCDE"},
		{SerialNumber: "QWERT", Channels: []int{8, 1, 7}},
		{SerialNumber: "ZXCVB", Channels: []int{2}},
	}, query.Queries)
	require.Equal(t, 3, query.Catalog.Len())
}

func TestParse_QueryErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arg  string
		want error
	}{
		{arg: "ABCDE@19", want: relay.ErrInvalidChannel},
		{arg: "ABCDE@0", want: relay.ErrInvalidChannel},
		{arg: "ABCDE@5", want: relay.ErrInvalidChannel},
		{arg: "ABCDE:12341", want: relay.ErrInvalidChannel},
		{arg: "GHOST@1", want: relay.ErrBadSerialNumber},
		{arg: "GHOST", want: relay.ErrBadSerialNumber},
	}

	for _, tt := range tests {
		_, err := parse(t, "query", tt.arg)
		require.ErrorIs(t, err, tt.want, tt.arg)
	}
}

func TestParse_AliasEdits(t *testing.T) {
	t.Parallel()

	got, err := parse(t, "alias", "pump=abcde", "+fan:qwert", "-old")
	require.NoError(t, err)
	require.Equal(t, Alias{Edits: []relay.AliasEdit{
		{Remove: true, Alias: relay.Alias{Name: "OLD"}},
		{Alias: relay.Alias{Name: "FAN", SerialNumber: "QWERT"}},
		{Alias: relay.Alias{Name: "PUMP", SerialNumber: "ABCDE"}},
	}}, got)
}

func TestParse_AliasKeepsEditsRightOfBadToken(t *testing.T) {
	t.Parallel()

	got, err := parse(t, "alias", "BAD!", "a=abcde")
	require.ErrorIs(t, err, relay.ErrSyntax)
	require.Equal(t, Alias{Edits: []relay.AliasEdit{
		{Alias: relay.Alias{Name: "A", SerialNumber: "ABCDE"}},
	}}, got)

	got, err = parse(t, "alias", "A=ABCDE", "BAD!")
	require.ErrorIs(t, err, relay.ErrSyntax)
	require.Equal(t, Alias{Edits: []relay.AliasEdit{}}, got)
}

func TestParse_CatalogOnlyForHardwareCommands(t *testing.T) {
	t.Parallel()

	var calls int

	p := newTestParser(&calls)
	ctx := context.Background()

	for _, args := range [][]string{{"help"}, {"list"}, {"alias", "A=ABCDE"}, {"bogus", "ABCDE"}} {
		_, _ = p.Parse(ctx, args)
	}

	require.Zero(t, calls)

	_, err := p.Parse(ctx, []string{"query", "ABCDE"})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestParse_PropagatesCollaboratorErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	noDevices := New(&fakeResolver{}, func(context.Context) (*relay.Catalog, error) {
		return nil, relay.ErrNoDevices
	})

	_, err := noDevices.Parse(ctx, []string{"set", "ABCDE:1"})
	require.ErrorIs(t, err, relay.ErrNoDevices)

	storeErr := errors.New("store unavailable")
	broken := New(&fakeResolver{err: storeErr}, newTestParser(nil).catalog)

	_, err = broken.Parse(ctx, []string{"query", "ABCDE"})
	require.ErrorIs(t, err, storeErr)
}

func TestIsHelpWord(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"h", "HELP", "?", "-?", "/h", "-help"} {
		require.True(t, IsHelpWord(s), s)
	}

	for _, s := range []string{"", "--help", "list", "-", "hh"} {
		require.False(t, IsHelpWord(s), s)
	}
}
