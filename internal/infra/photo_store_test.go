package infra

import (
	"context"
	"strings"
	"testing"

	"github.com/menuvercel/mitienda-host/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3PhotoStore_DisabledWithoutBucket(t *testing.T) {
	store, err := NewS3PhotoStore(context.Background(), &config.Config{}, NewCircuitBreaker(DefaultCBConfig("fotos")))
	require.NoError(t, err)
	assert.False(t, store.Enabled())

	_, err = store.Put(context.Background(), "productos/x.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrPhotoStoreDisabled)
}

func TestMailer_Enabled(t *testing.T) {
	assert.False(t, NewMailer(&config.Config{}).Enabled())
	assert.Error(t, NewMailer(&config.Config{}).Send("a@b.c", "s", "b"))
	assert.True(t, NewMailer(&config.Config{SMTPHost: "smtp.test", SMTPPort: 587}).Enabled())
}
