package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/config"
)

func TestNeedsMongo(t *testing.T) {
	cfg := config.Defaults()
	assert.False(t, NeedsMongo(cfg))

	cfg.Cache.Mode = config.CacheHybrid
	assert.True(t, NeedsMongo(cfg))

	cfg = config.Defaults()
	cfg.Reference.Source = config.ReferenceMongo
	assert.True(t, NeedsMongo(cfg))
}

func TestBuild_JSONReference(t *testing.T) {
	cfg := config.Defaults()
	cfg.Reference.Path = "../standardizer/testdata/reference.json"

	deps, err := Build(context.Background(), cfg, Options{}, zap.NewNop())
	require.NoError(t, err)
	defer deps.Close(context.Background())

	assert.Nil(t, deps.Mongo)
	assert.Nil(t, deps.Index)
	require.NotNil(t, deps.Standardizer)
	assert.NotEmpty(t, deps.Standardizer.Version())

	cfg.Reference.Path = "missing.json"
	_, err = Build(context.Background(), cfg, Options{}, zap.NewNop())
	assert.Error(t, err)
}
