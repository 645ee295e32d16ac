package postdischarge

import "github.com/i-monteiro/linhas-de-cuidado/internal/domain/careline"

type Handler = careline.StageHandler[Form]

func NewHandler(svc *Service, sessions careline.SessionSource, selector careline.Selector) *Handler {
	return careline.NewStageHandler[Form](svc.Stage, svc, sessions, selector)
}
