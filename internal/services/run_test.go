package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/payengine/internal/config"
)

func TestRun_Modes(t *testing.T) {
	for _, mode := range []string{config.ModeFold, config.ModePipelined} {
		t.Run(mode, func(t *testing.T) {
			p := NewProcessor(nil)
			cfg := &config.Config{Mode: mode, Buffer: 4}
			n, err := Run(context.Background(), cfg, &sliceSource{events: scenarioEvents()}, p)
			require.NoError(t, err)
			assert.Equal(t, 9, n)
			assertAccount(t, p, 2, "0.0000", "0.0000", "0.0000", true)
		})
	}
}

func TestOpenSink_CSV(t *testing.T) {
	var buf bytes.Buffer
	sink, closeFn, err := OpenSink(context.Background(), &config.Config{Sink: config.SinkCSV}, &buf)
	require.NoError(t, err)
	defer closeFn()

	_, ok := sink.(*CSVSink)
	assert.True(t, ok)
	require.NoError(t, sink.Export(context.Background(), "run", nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}
