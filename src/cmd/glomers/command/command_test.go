package command

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cbhcbhcbh/dist-sys/src/common"
	"github.com/cbhcbhcbh/dist-sys/src/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const initLine = `{"src":"c1","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`

// execute runs cmd with args over the given input lines and returns the lines
// it wrote.
func execute(t *testing.T, newCmd func() *cobra.Command, args []string, lines ...string) ([]string, error) {
	viper.Reset()
	_config = config.NewTestConfig(t, logrus.DebugLevel)

	var out bytes.Buffer
	stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	stdout = &out
	defer func() {
		stdin = os.Stdin
		stdout = os.Stdout
	}()

	cmd := newCmd()
	cmd.SilenceUsage = true
	cmd.SetArgs(args)
	err := cmd.Execute()

	text := strings.TrimSuffix(out.String(), "\n")
	if text == "" {
		return nil, err
	}
	return strings.Split(text, "\n"), err
}

func TestEchoCmd(t *testing.T) {
	out, err := execute(t, NewEchoCmd, []string{"--datadir", t.TempDir()},
		initLine,
		`{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":2,"echo":"hi"}}`,
	)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.JSONEq(t,
		`{"src":"n1","dest":"c1","body":{"type":"echo_ok","msg_id":1,"in_reply_to":2,"echo":"hi"}}`,
		out[1])
}

func TestEchoCmdFailure(t *testing.T) {
	out, err := execute(t, NewEchoCmd, []string{"--datadir", t.TempDir()},
		initLine,
		`{"src":"c1","dest":"n1","body":{"type":"unknown","msg_id":2}}`,
	)

	assert.True(t, common.IsPhase(err, common.Decode))
	assert.Len(t, out, 1)
}

func TestUniqueIDsCmdConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "glomers.toml"),
		[]byte("id-strategy = \"uuid\"\nlog = \"warn\"\n"),
		0600,
	))

	_, err := execute(t, NewUniqueIDsCmd, []string{"--datadir", dir}, initLine)
	require.NoError(t, err)

	assert.Equal(t, "uuid", _config.IDStrategy)
	assert.Equal(t, "warn", _config.LogLevel)
}

func TestUniqueIDsCmdDefault(t *testing.T) {
	out, err := execute(t, NewUniqueIDsCmd, []string{"--datadir", t.TempDir()},
		initLine,
		`{"src":"c1","dest":"n1","body":{"type":"generate","msg_id":2}}`,
	)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Contains(t, out[1], `"id":"n1-1"`)
}

func TestUniqueIDsCmdBadStrategy(t *testing.T) {
	_, err := execute(t, NewUniqueIDsCmd, []string{"--datadir", t.TempDir(), "--id-strategy", "snowflake"}, initLine)

	assert.True(t, common.IsPhase(err, common.Construct))
}

func TestBroadcastCmd(t *testing.T) {
	out, err := execute(t, NewBroadcastCmd, []string{"--datadir", t.TempDir()},
		initLine,
		`{"src":"c1","dest":"n1","body":{"type":"broadcast","msg_id":2,"message":3}}`,
		`{"src":"c1","dest":"n1","body":{"type":"read","msg_id":3}}`,
	)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.JSONEq(t,
		`{"src":"n1","dest":"c1","body":{"type":"read_ok","msg_id":2,"in_reply_to":3,"messages":[3]}}`,
		out[2])
}

func TestUUIDIsValid(t *testing.T) {
	out, err := execute(t, NewUniqueIDsCmd, []string{"--datadir", t.TempDir(), "--id-strategy", "uuid"},
		initLine,
		`{"src":"c1","dest":"n1","body":{"type":"generate","msg_id":2}}`,
	)
	require.NoError(t, err)
	require.Len(t, out, 2)

	var reply struct {
		Body struct {
			ID string `json:"id"`
		} `json:"body"`
	}
	require.NoError(t, json.Unmarshal([]byte(out[1]), &reply))

	assert.Equal(t, "uuid", _config.IDStrategy)
	_, err = uuid.Parse(reply.Body.ID)
	assert.NoError(t, err)
}
