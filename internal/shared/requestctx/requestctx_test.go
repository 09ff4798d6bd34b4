package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))

	//nolint:staticcheck // nil context is tolerated
	assert.Equal(t, "req-2", RequestID(WithRequestID(nil, "req-2")))
}
