package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Bernah2o/legalmatrix/internal/database"
)

// AppliesTo reports whether a regulation applies to an organization: it is
// generally applicable, or its sector scope matches (explicit sector match
// or the "all sectors" sentinel) and every hazard flag it sets is also set
// on the organization. A general regulation applies regardless of sector; a
// non-general regulation with no sector reference never qualifies.
func AppliesTo(reg RegulationView, org OrganizationView) bool {
	if reg.General {
		return true
	}

	sectorOK := reg.SectorAll
	if !sectorOK && reg.SectorID != nil && org.SectorID != nil && *reg.SectorID == *org.SectorID {
		sectorOK = true
	}
	if !sectorOK {
		return false
	}

	for key, set := range reg.Hazards {
		if set && !org.Characteristics[key] {
			return false
		}
	}
	return true
}

// SyncOrganization reconciles an organization's compliance records against
// the current applicable-regulation set. Records are created as pending,
// toggled active/inactive as applicability changes, and never deleted, so
// evaluation history survives characteristic changes. Calling it twice with
// no intervening data change is a no-op the second time.
func (s *Service) SyncOrganization(ctx context.Context, orgID int64) (*SyncResult, error) {
	q := database.New(s.pool)

	org, err := q.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("organization %d: %w", orgID, err)
	}

	regs, err := q.ListActiveRegulations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list regulations: %w", err)
	}

	sectors, err := q.ListSectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	allSectors := make(map[int32]bool, len(sectors))
	for _, sec := range sectors {
		allSectors[sec.ID] = sec.EsTodos
	}

	orgView := OrganizationView{
		SectorID:        FromPgInt4(org.SectorID),
		Characteristics: unmarshalFlags(org.Caracteristicas),
	}

	applicable := make(map[int64]bool, len(regs))
	res := &SyncResult{}
	for _, r := range regs {
		view := RegulationView{
			ID:       r.ID,
			General:  r.AplicacionGeneral,
			SectorID: FromPgInt4(r.SectorID),
			Hazards:  unmarshalFlags(r.HazardFlags),
		}
		if view.SectorID != nil {
			view.SectorAll = allSectors[*view.SectorID]
		}
		if AppliesTo(view, orgView) {
			applicable[r.ID] = true
		}
	}
	res.ApplicableTotal = len(applicable)

	existing, err := q.ListComplianceByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list compliance: %w", err)
	}

	covered := make(map[int64]bool, len(existing))
	for _, c := range existing {
		covered[c.RegulationID] = true
		res.Existing++

		switch {
		case applicable[c.RegulationID] && c.Applicability == string(ApplicabilityInactive):
			if err := q.UpdateComplianceApplicability(ctx, c.ID, string(ApplicabilityActive)); err != nil {
				return nil, fmt.Errorf("reactivate compliance %d: %w", c.ID, err)
			}
			res.Reactivated++
		case !applicable[c.RegulationID] && c.Applicability == string(ApplicabilityActive):
			if err := q.UpdateComplianceApplicability(ctx, c.ID, string(ApplicabilityInactive)); err != nil {
				return nil, fmt.Errorf("deactivate compliance %d: %w", c.ID, err)
			}
			res.Deactivated++
		}
	}

	for regID := range applicable {
		if covered[regID] {
			continue
		}
		err := q.InsertComplianceRecord(ctx, database.InsertComplianceRecordParams{
			OrganizationID: orgID,
			RegulationID:   regID,
			Status:         string(CompliancePending),
			Applicability:  string(ApplicabilityActive),
		})
		if err != nil {
			// A concurrent sync already created it; losing the race is
			// not an error.
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				continue
			}
			return nil, fmt.Errorf("create compliance for regulation %d: %w", regID, err)
		}
		res.Created++
	}

	s.log.Info("compliance synchronized",
		"organization_id", orgID,
		"applicable", res.ApplicableTotal,
		"created", res.Created,
		"reactivated", res.Reactivated,
		"deactivated", res.Deactivated,
	)
	return res, nil
}
