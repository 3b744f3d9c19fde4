package verein

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"VereinsKasse/internal/serviceiface"
)

type VereinService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewVereinService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &VereinService{config: cfg, pool: pool}
}

func (s *VereinService) Name() string {
	return "verein"
}

func (s *VereinService) Start() error {
	go StartVereinService(s.config, s.pool)
	return nil
}

func (s *VereinService) Stop() error {
	return nil
}
