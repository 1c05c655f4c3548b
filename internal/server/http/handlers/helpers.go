package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
	pkgAuth "github.com/polkiloo/prowriters/internal/pkg/auth"
	"github.com/polkiloo/prowriters/internal/server/http/dto"
	"github.com/polkiloo/prowriters/internal/server/http/middleware"
	"github.com/polkiloo/prowriters/internal/usecase"
)

const (
	// multipart overhead on top of the file itself
	maxFormOverhead = 1 << 20
	maxFormMemory   = 1 << 20
)

// CurrentPrincipal extracts the authenticated caller from context.
func CurrentPrincipal(c *gin.Context) pkgAuth.Principal {
	principal, _ := middleware.CurrentPrincipal(c)
	return principal
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// respondError maps a domain error onto the HTTP response. Unexpected errors
// are attached to the context for the request logger and never leak.
func respondError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		status, message = http.StatusBadRequest, validationMessage(err)
	case errors.Is(err, domainErrors.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domainErrors.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		status, message = http.StatusConflict, "already exists"
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		status, message = http.StatusConflict, domainErrors.ErrInvalidTransition.Error()
	case errors.Is(err, domainErrors.ErrAlreadyPaid):
		status, message = http.StatusConflict, domainErrors.ErrAlreadyPaid.Error()
	case errors.Is(err, domainErrors.ErrPackageInactive):
		status, message = http.StatusUnprocessableEntity, domainErrors.ErrPackageInactive.Error()
	case errors.Is(err, domainErrors.ErrPaymentRejected):
		status, message = http.StatusBadRequest, domainErrors.ErrPaymentRejected.Error()
	case errors.Is(err, domainErrors.ErrGateway):
		status, message = http.StatusBadGateway, "payment gateway unavailable"
	}
	_ = c.Error(err)
	middleware.AbortWithError(c, status, message)
}

func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domainErrors.ErrValidation.Error()+": ")
	if msg == "" {
		return domainErrors.ErrValidation.Error()
	}
	return msg
}

// formFile reads an optional multipart file. The returned closer must be
// called once the attachment has been consumed.
func formFile(c *gin.Context, field string, category model.FileCategory) (*model.Attachment, func(), error) {
	file, header, err := c.Request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, err
	}
	return attachment(file, header, category), func() { _ = file.Close() }, nil
}

func attachment(file multipart.File, header *multipart.FileHeader, category model.FileCategory) *model.Attachment {
	return &model.Attachment{
		Upload: model.Upload{
			OriginalName: header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
			Size:         header.Size,
			Category:     category,
		},
		Body: file,
	}
}

// parseMultipart bounds the request body and parses the form. It answers the
// request itself when parsing fails.
func parseMultipart(c *gin.Context) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, usecase.MaxUploadSize+maxFormOverhead)
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.AbortWithError(c, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		middleware.AbortWithError(c, http.StatusBadRequest, "invalid multipart form")
		return false
	}
	return true
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:            o.ID,
		Number:        o.Number,
		PackageID:     o.PackageID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		Amount:        o.Amount,
		Currency:      string(o.Currency),
		Requirements:  o.Requirements,
		DueAt:         o.DueAt,
		CompletedAt:   o.CompletedAt,
		CreatedAt:     o.CreatedAt,
	}
}

func toFileResponse(f *model.OrderFile) dto.FileResponse {
	return dto.FileResponse{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		Category:     string(f.Category),
		ContentType:  f.ContentType,
		Size:         f.Size,
		UploadedBy:   string(f.UploadedBy),
		UploadedAt:   f.UploadedAt,
	}
}

func toPackageResponse(p *model.ServicePackage, serviceSlug string) dto.PackageResponse {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return dto.PackageResponse{
		ID:           p.ID,
		ServiceID:    p.ServiceID,
		ServiceSlug:  serviceSlug,
		Name:         p.Name,
		Description:  p.Description,
		PriceINR:     p.PriceINR,
		PriceUSD:     p.PriceUSD,
		Features:     features,
		DeliveryDays: p.DeliveryDays,
		Revisions:    p.Revisions,
		IsPopular:    p.IsPopular,
	}
}

func toServiceResponse(s *model.Service, withDescription bool) dto.ServiceResponse {
	resp := dto.ServiceResponse{
		ID:               s.ID,
		Slug:             s.Slug,
		Name:             s.Name,
		ShortDescription: s.ShortDescription,
		Icon:             s.Icon,
		IsFeatured:       s.IsFeatured,
		Packages:         make([]dto.PackageResponse, 0, len(s.Packages)),
	}
	if withDescription {
		resp.Description = s.Description
	}
	for i := range s.Packages {
		if !s.Packages[i].IsActive {
			continue
		}
		resp.Packages = append(resp.Packages, toPackageResponse(&s.Packages[i], ""))
	}
	return resp
}

func toMessageResponse(e *model.ChatEntry) dto.MessageResponse {
	return dto.MessageResponse{
		ID:                e.ID,
		Text:              e.Body,
		SenderDisplayName: e.SenderName,
		IsSupport:         e.IsSupport,
		Timestamp:         e.CreatedAt,
	}
}
