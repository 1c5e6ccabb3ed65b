package errors

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type mockCloser struct {
	closeErr error
	closed   bool
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.closeErr
}

func TestDeferClose(t *testing.T) {
	tests := []struct {
		name       string
		closer     io.Closer
		wantLogged bool
	}{
		{name: "nil closer", closer: nil},
		{name: "successful close", closer: &mockCloser{}},
		{name: "failed close", closer: &mockCloser{closeErr: errors.New("disk gone")}, wantLogged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)

			DeferClose(logger, tt.closer, "close failed")

			if mc, ok := tt.closer.(*mockCloser); ok && !mc.closed {
				t.Error("expected Close to be called")
			}
			if logged := strings.Contains(buf.String(), "close failed"); logged != tt.wantLogged {
				t.Errorf("logged = %v, want %v (output %q)", logged, tt.wantLogged, buf.String())
			}
		})
	}
}
