package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Jostyn07/Asesoriasth-backend/config"
	"github.com/Jostyn07/Asesoriasth-backend/model"
	"github.com/Jostyn07/Asesoriasth-backend/pkg/logger"
)

// ValidationError rejects a submission before any write happens. No
// clientId is issued, so a client-side retry is cheap.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field %q is missing", e.Field)
}

// PrimaryStoreError means the durable write failed. The submission is not
// committed and no mirror write was attempted.
type PrimaryStoreError struct {
	Err error
}

func (e *PrimaryStoreError) Error() string {
	return fmt.Sprintf("primary store write failed: %v", e.Err)
}

func (e *PrimaryStoreError) Unwrap() error { return e.Err }

// PrimaryStore is the durable system of record for submissions.
type PrimaryStore interface {
	// CreateSubmission persists the submission, its dependents, plans and
	// payment method in one durable operation. The submission's ClientID
	// must already be set; a duplicate fails loudly.
	CreateSubmission(ctx context.Context, s *model.Submission) error
}

// AttachmentUploader is the object-storage boundary used for inline
// attachments.
type AttachmentUploader interface {
	UploadFiles(ctx context.Context, files []UploadFile, folder string) ([]FileLink, error)
}

// SubmissionService sequences a submission across the primary store, the
// attachment store and the mirror sinks, and reports truthful per-sink
// status back to the caller.
type SubmissionService struct {
	store    PrimaryStore
	mirror   *MirrorWriter
	uploader AttachmentUploader
	sheets   *config.SheetsConfig
	newID    func() string
}

func NewSubmissionService(store PrimaryStore, mirror *MirrorWriter, uploader AttachmentUploader, sheets *config.SheetsConfig) *SubmissionService {
	return &SubmissionService{
		store:    store,
		mirror:   mirror,
		uploader: uploader,
		sheets:   sheets,
		newID:    NewClientID,
	}
}

// Submit runs the full intake pipeline:
// validate, primary write, attachment resolution, mirror groups, aggregate.
// Once the primary write succeeds the submission is committed; mirror
// failures are reported in the result, never rolled back.
func (s *SubmissionService) Submit(ctx context.Context, sub *model.Submission) (*model.SubmissionResult, error) {
	if err := validate(sub); err != nil {
		return nil, err
	}

	sub.ClientID = s.newID()
	ctx = context.WithValue(ctx, logger.ClientIDKey, sub.ClientID)

	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		logger.Error(ctx, "primary write failed", "error", err)
		return nil, &PrimaryStoreError{Err: err}
	}
	logger.Info(ctx, "submission persisted",
		"dependents", len(sub.Dependents),
		"plans", len(sub.CignaPlans),
		"has_payment", sub.PaymentMethod.Valid(),
	)

	// Attachment links must exist before the policy rows render, because
	// the mirror row embeds them. Best-effort: a failed upload is logged
	// and the submission continues without the missing links.
	s.resolveAttachments(ctx, sub)

	result := &model.SubmissionResult{
		ClientID: sub.ClientID,
		Accepted: true,
	}

	// The three sink groups are independent, each with its own retry
	// budget, so they run concurrently.
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		out := s.mirror.AppendRows(ctx, s.sheets.PoliciesSheet, PolicyRows(sub))
		result.SinkStatus.Policies = groupStatus(out)
	}()

	if sub.PaymentMethod.Valid() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := s.mirror.AppendRows(ctx, s.sheets.PaymentSheet, [][]string{PaymentRow(sub)})
			result.SinkStatus.Payment = groupStatus(out)
		}()
	}

	if len(sub.CignaPlans) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out := s.mirror.AppendRows(ctx, s.sheets.PlansSheet, PlanRows(sub))
			result.SinkStatus.Plans = groupStatus(out)
		}()
	}

	wg.Wait()

	if !result.FullSuccess() {
		logger.Warn(ctx, "submission mirrored partially",
			"failed_groups", result.SinkStatus.FailedGroups(),
		)
	}

	return result, nil
}

// validate enforces the required-field check. Everything beyond the
// person's name is allowed to be empty: capturing partial data beats
// rejecting the submission.
func validate(sub *model.Submission) error {
	if sub.GivenName == "" {
		return &ValidationError{Field: "nombre"}
	}
	if sub.FamilyName == "" {
		return &ValidationError{Field: "apellidos"}
	}
	return nil
}

func (s *SubmissionService) resolveAttachments(ctx context.Context, sub *model.Submission) {
	if s.uploader == nil || len(sub.Attachments) == 0 {
		return
	}

	files := make([]UploadFile, 0, len(sub.Attachments))
	for _, a := range sub.Attachments {
		files = append(files, UploadFile{
			Name:     fmt.Sprintf("%s-%s-%s-%s", sub.GivenName, sub.FamilyName, sub.ClientID, a.Name),
			MimeType: a.MimeType,
			Content:  a.Content,
		})
	}

	links, err := s.uploader.UploadFiles(ctx, files, sub.ClientID)
	if err != nil {
		var uploadErr *UploadError
		if errors.As(err, &uploadErr) {
			logger.Warn(ctx, "attachment upload incomplete",
				"failed_file", uploadErr.FailedFile,
				"uploaded", uploadErr.Uploaded,
				"error", err,
			)
		} else {
			logger.Warn(ctx, "attachment upload failed", "error", err)
		}
	}
	for _, l := range links {
		sub.FileLinks = append(sub.FileLinks, l.Link)
	}
}

func groupStatus(out Outcome) model.GroupStatus {
	g := model.GroupStatus{
		Attempted: true,
		Success:   out.Success,
		Attempts:  out.Attempts,
	}
	if out.LastErr != nil {
		g.LastError = out.LastErr.Error()
	}
	return g
}
