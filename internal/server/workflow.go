package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"rentapply/internal/session"
	"rentapply/internal/workflow"
	"rentapply/pkg/types"

	"github.com/sirupsen/logrus"
)

// multipartMemory is how much of an upload body is held in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

type workflowResponse struct {
	View    workflow.View           `json:"view"`
	Upload  *uploadResponse         `json:"upload,omitempty"`
	Payment *workflow.PaymentResult `json:"payment,omitempty"`
}

type uploadResponse struct {
	ApplicationID string                         `json:"applicationId"`
	Uploaded      int                            `json:"uploaded"`
	Failed        int                            `json:"failed"`
	Dropped       map[types.DocumentCategory]int `json:"dropped,omitempty"`
	Failures      []uploadFailure                `json:"failures,omitempty"`
	Warnings      []string                       `json:"warnings,omitempty"`
	Documents     []types.Document               `json:"documents"`
}

type uploadFailure struct {
	Category types.DocumentCategory `json:"category"`
	FileName string                 `json:"fileName"`
	Error    string                 `json:"error"`
}

type startForm struct {
	PropertyID    string `form:"property_id"`
	Step          *int   `form:"step"`
	ApplicationID string `form:"application_id"`
}

type gotoForm struct {
	Step *int `form:"step"`
}

// workflowOp runs against a locked, freshly loaded session. Errors are
// written to the client after the state has been saved.
type workflowOp func(ctx context.Context, wf *workflow.Workflow, resp *workflowResponse) error

func (s *Service) handlePostWorkflow(w http.ResponseWriter, r *http.Request) {
	identity, err := s.identityFromContext(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("identity missing on authenticated route")
		s.writeError(w, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.badRequest(w, "Invalid form data")
		return
	}

	var form startForm
	if err := decoder.Decode(&form, r.PostForm); err != nil {
		s.logger.WithError(err).Debug("failed to decode start form")
		s.badRequest(w, "Invalid form data")
		return
	}

	req := workflow.StartRequest{
		PropertyID:          strings.TrimSpace(form.PropertyID),
		ApplicantID:         identity.UserID,
		ResumeApplicationID: strings.TrimSpace(form.ApplicationID),
	}
	if form.Step != nil {
		step := workflow.Step(*form.Step)
		req.ResumeStep = &step
	}

	ctx := r.Context()

	state := &workflow.State{Client: clientMeta(r)}
	if identity.Email != "" {
		state.Fields.Email = identity.Email
	}

	wf := workflow.New(s.deps, state)
	if err := wf.Start(ctx, req); err != nil {
		s.writeError(w, err)
		return
	}

	// starting over replaces any session the client already holds
	if previous, err := s.sessionID(r); err == nil {
		if err := s.sessions.Delete(ctx, previous); err != nil {
			s.logger.WithError(err).WithField("session_id", previous).Warn("failed to drop previous session")
		}
	}

	id := s.newID()
	if err := s.sessions.Save(ctx, id, state); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.setSessionCookie(w, id); err != nil {
		s.logger.WithError(err).Error("failed to encode session cookie")
		s.writeError(w, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"session_id":  id,
		"property_id": req.PropertyID,
		"user_id":     identity.UserID,
	}).Info("workflow session started")

	s.writeJSON(w, http.StatusCreated, workflowResponse{View: wf.View()})
}

func (s *Service) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	_, wf, err := s.loadSession(r.Context(), r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, workflowResponse{View: wf.View()})
}

func (s *Service) handlePostNext(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(ctx context.Context, wf *workflow.Workflow, resp *workflowResponse) error {
		t, err := wf.Steps.Next()
		resp.View.Warning = t.Warning
		return err
	})
}

func (s *Service) handlePostBack(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(ctx context.Context, wf *workflow.Workflow, resp *workflowResponse) error {
		_, err := wf.Steps.Back()
		return err
	})
}

func (s *Service) handlePostGoTo(w http.ResponseWriter, r *http.Request) {
	var form gotoForm
	if !s.decodeForm(w, r, &form) {
		return
	}
	if form.Step == nil {
		s.badRequest(w, "A step is required")
		return
	}

	s.run(w, r, func(ctx context.Context, wf *workflow.Workflow, resp *workflowResponse) error {
		t, err := wf.Steps.GoTo(workflow.Step(*form.Step))
		resp.View.Warning = t.Warning
		return err
	})
}

func (s *Service) handlePostDraft(w http.ResponseWriter, r *http.Request) {
	var fields types.ApplicationFields
	if !s.decodeForm(w, r, &fields) {
		return
	}

	s.run(w, r, func(ctx context.Context, wf *workflow.Workflow, resp *workflowResponse) error {
		return wf.Records.SaveDraft(ctx, fields)
	})
}

func (s *Service) handlePostSubmit(w http.ResponseWriter, r *http.Request) {
	var fields types.ApplicationFields
	if !s.decodeForm(w, r, &fields) {
		return
	}

	s.run(w, r, func(ctx context.Context, wf *workflow.Workflow, resp *workflowResponse) error {
		_, err := wf.Records.CreateFull(ctx, fields)
		return err
	})
}

// handlePostDocuments takes a multipart body with one file field per
// category. Application fields sent alongside are folded into the state
// before the batch runs.
func (s *Service) handlePostDocuments(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.config.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: fmt.Sprintf("Uploads are limited to %d MB per request", s.config.MaxUploadMB),
			})
			return
		}
		s.badRequest(w, "Invalid upload")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	s.run(w, r, func(ctx context.Context, wf *workflow.Workflow, resp *workflowResponse) error {
		if len(r.MultipartForm.Value) > 0 {
			if err := decoder.Decode(&wf.State.Fields, r.MultipartForm.Value); err != nil {
				s.logger.WithError(err).Debug("failed to decode application fields")
			}
		}

		upload := &uploadResponse{Dropped: make(map[types.DocumentCategory]int)}

		for _, category := range types.DocumentCategories {
			headers := r.MultipartForm.File[string(category)]
			if len(headers) == 0 {
				continue
			}

			files := make([]workflow.File, 0, len(headers))
			for _, fh := range headers {
				f, err := fh.Open()
				if err != nil {
					return fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
				}
				defer f.Close()

				files = append(files, workflow.File{
					Name:        fh.Filename,
					Size:        fh.Size,
					ContentType: fh.Header.Get("Content-Type"),
					Body:        f,
				})
			}

			_, dropped, err := wf.Uploads.Add(category, files)
			if err != nil {
				return err
			}
			if dropped > 0 {
				upload.Dropped[category] = dropped
			}
		}

		report, err := wf.Uploads.Submit(ctx)
		if err != nil {
			return err
		}

		upload.ApplicationID = report.ApplicationID
		upload.Uploaded = report.Uploaded
		upload.Failed = report.Failed
		upload.Documents = report.Documents
		if upload.Documents == nil {
			upload.Documents = []types.Document{}
		}
		for _, res := range report.Results {
			if res.Err == nil {
				continue
			}
			upload.Failures = append(upload.Failures, uploadFailure{
				Category: res.Category,
				FileName: res.FileName,
				Error:    workflow.UserMessage(res.Err),
			})
		}
		if report.ReconcileErr != nil {
			upload.Warnings = append(upload.Warnings, workflow.UserMessage(report.ReconcileErr))
		}
		if report.StatusErr != nil {
			upload.Warnings = append(upload.Warnings, workflow.UserMessage(report.StatusErr))
		}

		resp.Upload = upload
		return nil
	})
}

func (s *Service) handlePostLease(w http.ResponseWriter, r *http.Request) {
	var form types.LeaseForm
	if !s.decodeForm(w, r, &form) {
		return
	}

	s.run(w, r, func(ctx context.Context, wf *workflow.Workflow, resp *workflowResponse) error {
		wf.Contracts.UpdateLeaseForm(form)
		return nil
	})
}

func (s *Service) handlePostSign(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(ctx context.Context, wf *workflow.Workflow, resp *workflowResponse) error {
		_, err := wf.Contracts.Sign(ctx)
		return err
	})
}

func (s *Service) handlePostPayment(w http.ResponseWriter, r *http.Request) {
	var form types.PaymentForm
	if !s.decodeForm(w, r, &form) {
		return
	}
	if err := decoder.Decode(&form.Card, r.PostForm); err != nil {
		s.badRequest(w, "Invalid form data")
		return
	}

	s.run(w, r, func(ctx context.Context, wf *workflow.Workflow, resp *workflowResponse) error {
		result, err := wf.Payments.Pay(ctx, form)
		resp.Payment = result
		return err
	})
}

func (s *Service) handleGetContractDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, wf, err := s.loadSession(ctx, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	file, err := wf.Contracts.Download(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Body); err != nil {
		s.logger.WithError(err).Error("failed to write contract download")
	}
}

func (s *Service) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, wf, err := s.loadSession(ctx, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if wf.State.ApplicationID == "" {
		s.writeError(w, workflow.ErrNoApplication)
		return
	}

	doc, body, err := s.files.Open(ctx, wf.State.ApplicationID, r.PathValue("documentID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		s.logger.WithError(err).WithField("document_id", doc.ID).Error("failed to stream document")
	}
}

// run takes the session lock, loads the state, applies fn and saves the
// state whatever fn returned. The lock is held across load and save so
// concurrent requests on one session never work from a stale copy.
func (s *Service) run(w http.ResponseWriter, r *http.Request, fn workflowOp) {
	ctx := r.Context()

	id, err := s.sessionID(r)
	if err != nil {
		s.writeError(w, session.ErrNotFound)
		return
	}

	unlock, err := s.sessions.Lock(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer unlock()

	wf, err := s.openSession(ctx, id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	wf.State.Client = clientMeta(r)

	var resp workflowResponse
	opErr := fn(ctx, wf, &resp)

	// the outcome of fn is persisted even if the client went away
	if err := s.sessions.Save(context.WithoutCancel(ctx), id, wf.State); err != nil {
		s.writeError(w, err)
		return
	}

	if opErr != nil {
		s.writeError(w, opErr)
		return
	}

	warning := resp.View.Warning
	resp.View = wf.View()
	resp.View.Warning = warning

	s.writeJSON(w, http.StatusOK, resp)
}

// loadSession resolves the session cookie for the authenticated caller
// without locking. Only read-only handlers use it.
func (s *Service) loadSession(ctx context.Context, r *http.Request) (string, *workflow.Workflow, error) {
	id, err := s.sessionID(r)
	if err != nil {
		return "", nil, session.ErrNotFound
	}

	wf, err := s.openSession(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return id, wf, nil
}

// openSession loads the state of session id. Sessions owned by another
// applicant read as missing.
func (s *Service) openSession(ctx context.Context, id string) (*workflow.Workflow, error) {
	identity, err := s.identityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	state, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if state.ApplicantID != identity.UserID {
		s.logger.WithFields(logrus.Fields{
			"session_id": id,
			"user_id":    identity.UserID,
		}).Warn("session belongs to another applicant")
		return nil, session.ErrNotFound
	}

	return workflow.New(s.deps, state), nil
}

func (s *Service) decodeForm(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := r.ParseForm(); err != nil {
		s.badRequest(w, "Invalid form data")
		return false
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		s.logger.WithError(err).Debug("failed to decode form")
		s.badRequest(w, "Invalid form data")
		return false
	}
	return true
}

func (s *Service) setSessionCookie(w http.ResponseWriter, id string) error {
	encoded, err := s.cookie.Encode(s.config.CookieName, id)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   s.config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionTTLSec,
		Path:     "/",
	})

	return nil
}

func (s *Service) sessionID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return "", err
	}

	var id string
	if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &id); err != nil {
		return "", err
	}
	return id, nil
}

func clientMeta(r *http.Request) types.ClientMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		ip = strings.TrimSpace(first)
	}

	return types.ClientMeta{IP: ip, UserAgent: r.UserAgent()}
}
