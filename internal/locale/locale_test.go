package locale

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbeddedDefaults(t *testing.T) {
	l := mustDefault()
	require.NotEmpty(t, l.CLI.Description)
	require.NotEmpty(t, l.CLI.Commands.Query)
	require.NotEmpty(t, l.Logs.RunningQueryOnConn)
	require.NotEmpty(t, l.Errors.UnknownConnection)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	l, err := Load("xx_XX")
	require.NoError(t, err)
	require.Equal(t, mustDefault().CLI.Description, l.CLI.Description)
}

func TestDetectSystemLocale(t *testing.T) {
	t.Setenv("LANG", "pt-BR.UTF-8")
	require.Equal(t, "pt_BR", DetectSystemLocale())

	t.Setenv("LANG", "")
	require.Equal(t, "en_US", DetectSystemLocale())
}
