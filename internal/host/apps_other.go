//go:build !windows

package host

import (
	"context"

	"github.com/sjzar/advshortcut/internal/model"
)

func registryApps(context.Context) []model.InstalledApp { return nil }
