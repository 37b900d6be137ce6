package main

import (
	"go.uber.org/zap"

	"github.com/ColonelBlimp/cwtranslate/cmd"
	"github.com/ColonelBlimp/cwtranslate/internal/recovery"
)

func main() {
	defer recovery.HandlePanicFunc(func() {
		_ = zap.L().Sync()
	})
	cmd.Execute()
}
