package workflow

import (
	"context"
	"strings"
	"time"

	"rentapply/pkg/types"

	"github.com/sirupsen/logrus"
)

// DefaultSignature is used when the tenant leaves the signature field empty.
const DefaultSignature = "signed electronically"

// ResolveLeaseDates picks the effective lease dates: the explicit field,
// then the derived term value, then today for the start and empty for the
// end.
func ResolveLeaseDates(form types.LeaseForm, now time.Time) (start, end string) {
	start = firstNonEmpty(form.LeaseStartDate, form.TermStart)
	if start == "" {
		start = now.Format(dateLayout)
	}

	end = firstNonEmpty(form.LeaseEndDate, form.TermEnd)

	return start, end
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// ContractCoordinator turns the lease form into a contract and signs it on
// the tenant's behalf.
type ContractCoordinator struct {
	state     *State
	contracts ContractService
	recorder  Recorder
	logger    logrus.FieldLogger
	now       func() time.Time
}

// UpdateLeaseForm replaces the lease snapshot. Any generated preview is
// discarded because it no longer matches the form.
func (c *ContractCoordinator) UpdateLeaseForm(form types.LeaseForm) {
	c.state.LeaseForm = form
	c.Invalidate()
}

// Invalidate drops the local contract reference.
func (c *ContractCoordinator) Invalidate() {
	c.state.Contract = nil
}

// Sign generates a contract from the current lease form and signs it as the
// tenant. The preview only advances once both calls succeed.
func (c *ContractCoordinator) Sign(ctx context.Context) (*types.Contract, error) {
	done, err := begin(&c.state.IsSaving)
	if err != nil {
		return nil, err
	}
	defer done()

	form := c.state.LeaseForm
	if !form.TenantAgreement {
		return nil, ErrAgreementRequired
	}

	applicationID := c.state.ApplicationID
	if applicationID == "" {
		return nil, ErrNoApplication
	}

	logger := c.logger.WithField("application_id", applicationID)

	start, end := ResolveLeaseDates(form, c.now())

	generated, err := c.contracts.Generate(ctx, types.GenerateContractRequest{
		ApplicationID: applicationID,
		FormSnapshot:  form,
		StartDate:     start,
		EndDate:       end,
	})
	if err != nil {
		c.recorder.ContractSigned(false)
		logger.WithError(err).Error("failed to generate contract")
		return nil, backendError("generate contract", err)
	}

	signature := strings.TrimSpace(form.TenantSignature)
	if signature == "" {
		signature = DefaultSignature
	}

	signed, err := c.contracts.SignAsTenant(ctx, generated.ID, types.TenantSignature{
		Signature:   signature,
		ClientIP:    c.state.Client.IP,
		ClientAgent: c.state.Client.UserAgent,
	})
	if err != nil {
		c.recorder.ContractSigned(false)
		logger.WithError(err).WithField("contract_id", generated.ID).Error("failed to sign generated contract")
		return nil, backendError("sign contract", err)
	}

	c.state.Contract = signed
	c.state.ContractSigned = true
	c.recorder.ContractSigned(true)

	logger.WithField("contract_id", signed.ID).Info("tenant signed contract")

	return signed, nil
}

// Download renders the current contract preview.
func (c *ContractCoordinator) Download(ctx context.Context) (*types.ContractFile, error) {
	if c.state.Contract == nil {
		return nil, ErrNoContract
	}

	file, err := c.contracts.RenderDownload(ctx, c.state.Contract.ID)
	if err != nil {
		return nil, backendError("download contract", err)
	}

	return file, nil
}
