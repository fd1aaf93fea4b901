package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun(t *testing.T) {
	input := "type, client, tx, amount\n" +
		"deposit, 1, 1, 1.0\n" +
		"deposit, 2, 2, 2.0\n" +
		"deposit, 1, 3, 2.0\n" +
		"withdrawal, 1, 4, 1.5\n" +
		"withdrawal, 2, 5, 3.0\n"
	want := "client,available,held,total,locked\n" +
		"1,1.5000,0.0000,1.5000,false\n" +
		"2,2.0000,0.0000,2.0000,false\n"

	for _, mode := range []string{"fold", "pipelined"} {
		t.Run(mode, func(t *testing.T) {
			viper.Reset()
			var stdout, stderr bytes.Buffer
			noConfig := filepath.Join(t.TempDir(), ".env")

			code := run(context.Background(),
				[]string{"--config", noConfig, "--mode", mode, "--log-level", "error", writeInput(t, input)},
				&stdout, &stderr)

			assert.Equal(t, 0, code, stderr.String())
			assert.Equal(t, want, stdout.String())
		})
	}
}

func TestRun_UnrecognisedTypeIsIgnored(t *testing.T) {
	viper.Reset()
	var stdout, stderr bytes.Buffer
	path := writeInput(t, "type,client,tx,amount\ndeposit,1,1,5.0\ntransfer,2,2,1.0\ndeposit,1,3,1.0\n")

	code := run(context.Background(), []string{"--config", "", "--log-level", "error", path}, &stdout, &stderr)

	assert.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "client,available,held,total,locked\n"+
		"1,6.0000,0.0000,6.0000,false\n"+
		"2,0.0000,0.0000,0.0000,false\n", stdout.String())
}

func TestRun_Errors(t *testing.T) {
	t.Run("missing argument", func(t *testing.T) {
		viper.Reset()
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, run(context.Background(), nil, &stdout, &stderr))
		assert.Contains(t, stderr.String(), "usage: payengine")
		assert.Empty(t, stdout.String())
	})

	t.Run("missing file", func(t *testing.T) {
		viper.Reset()
		var stdout, stderr bytes.Buffer
		code := run(context.Background(),
			[]string{"--config", "", "--log-level", "error", filepath.Join(t.TempDir(), "nope.csv")},
			&stdout, &stderr)
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout.String())
	})

	t.Run("malformed record halts the run", func(t *testing.T) {
		viper.Reset()
		var stdout, stderr bytes.Buffer
		path := writeInput(t, "type,client,tx,amount\ndeposit,1,1,1.0\ndeposit,x,2,1.0\n")
		code := run(context.Background(), []string{"--config", "", "--log-level", "error", path}, &stdout, &stderr)
		assert.Equal(t, 1, code)
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), `"msg":"run failed"`)
		assert.Contains(t, stderr.String(), "line 3")
	})

	t.Run("invalid mode", func(t *testing.T) {
		viper.Reset()
		var stdout, stderr bytes.Buffer
		path := writeInput(t, "type,client,tx,amount\n")
		code := run(context.Background(), []string{"--config", "", "--mode", "parallel", path}, &stdout, &stderr)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr.String(), "invalid config")
	})
}
