package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpvault/internal/backup"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.backup.enabled") {
		if err := backup.New(backup.Dependency{
			DBConn:      a.dbConn,
			Router:      a.router,
			Idempotency: a.idemp,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			Digits:      a.digits,
			HMAC:        a.hmac,
			Clock:       a.clock,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module backup", "error", err)
			os.Exit(1)
		}
	}
}
