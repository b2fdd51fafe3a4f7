package signal

import "github.com/dkeye/Duet/internal/domain"

func (ctl *SignalWSController) handlePing(id domain.ConnID) {
	ctl.Orch.Pong(id)
}
