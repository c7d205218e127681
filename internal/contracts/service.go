package contracts

import (
	"context"
	"time"

	"rentapply/pkg/types"

	"github.com/sirupsen/logrus"
)

type contractRepository interface {
	Contract(ctx context.Context, contractID string) (*types.Contract, error)
	CreateContract(ctx context.Context, contract *types.Contract) error
	SignAsTenant(ctx context.Context, contractID string, sig types.TenantSignature, signedAt time.Time) (*types.Contract, error)
}

type Service struct {
	repo   contractRepository
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewService(repo contractRepository, logger logrus.FieldLogger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Generate stores a new draft contract built from the lease form snapshot.
func (s *Service) Generate(ctx context.Context, req types.GenerateContractRequest) (*types.Contract, error) {

	contract := &types.Contract{
		ApplicationID: req.ApplicationID,
		FormSnapshot:  req.FormSnapshot,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
	}

	if err := s.repo.CreateContract(ctx, contract); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"application_id": req.ApplicationID,
		"contract_id":    contract.ID,
	}).Info("contract generated")

	return contract, nil
}

func (s *Service) SignAsTenant(ctx context.Context, contractID string, sig types.TenantSignature) (*types.Contract, error) {
	return s.repo.SignAsTenant(ctx, contractID, sig, s.now().UTC())
}

// RenderDownload renders the stored contract as a PDF.
func (s *Service) RenderDownload(ctx context.Context, contractID string) (*types.ContractFile, error) {

	contract, err := s.repo.Contract(ctx, contractID)
	if err != nil {
		return nil, err
	}

	body, err := Render(contract)
	if err != nil {
		return nil, err
	}

	return &types.ContractFile{
		FileName:    "lease-" + contract.ID + ".pdf",
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}
