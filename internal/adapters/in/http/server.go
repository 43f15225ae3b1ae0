package http

import (
	"context"
	"errors"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"go.uber.org/zap"
)

var _ ServerInterface = (*Server)(nil)

// Server implements ServerInterface on top of the application handlers.
type Server struct {
	// Command handlers
	submitRequestHandler commands.SubmitRequestCommandHandler
	offerJobHandler      commands.OfferJobCommandHandler
	acceptOfferHandler   commands.AcceptOfferCommandHandler
	rejectOfferHandler   commands.RejectOfferCommandHandler
	completeJobHandler   commands.CompleteJobCommandHandler

	// Query handlers
	quoteHandler     queries.QuoteQueryHandler
	jobOffersHandler queries.GetJobOffersQueryHandler

	logger *zap.Logger
}

// Handlers groups the application handlers the server delegates to.
type Handlers struct {
	SubmitRequest commands.SubmitRequestCommandHandler
	OfferJob      commands.OfferJobCommandHandler
	AcceptOffer   commands.AcceptOfferCommandHandler
	RejectOffer   commands.RejectOfferCommandHandler
	CompleteJob   commands.CompleteJobCommandHandler
	Quote         queries.QuoteQueryHandler
	JobOffers     queries.GetJobOffersQueryHandler
}

func NewServer(h Handlers, logger *zap.Logger) *Server {
	return &Server{
		submitRequestHandler: h.SubmitRequest,
		offerJobHandler:      h.OfferJob,
		acceptOfferHandler:   h.AcceptOffer,
		rejectOfferHandler:   h.RejectOffer,
		completeJobHandler:   h.CompleteJob,
		quoteHandler:         h.Quote,
		jobOffersHandler:     h.JobOffers,
		logger:               logger.With(zap.String("component", "http")),
	}
}

// CreateQuote handles POST /api/v1/quotes.
func (s *Server) CreateQuote(ctx echo.Context) error {
	var body RequestAttributes
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	snapshot, err := body.Snapshot()
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewQuoteQuery(snapshot)
	if err != nil {
		return s.fail(ctx, err)
	}

	quote, err := s.quoteHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, ToQuote(quote))
}

// SubmitRequest handles POST /api/v1/requests.
func (s *Server) SubmitRequest(ctx echo.Context) error {
	var body SubmitRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	snapshot, err := body.Snapshot()
	if err != nil {
		return s.fail(ctx, err)
	}

	jobID := kernel.NewUUID()
	if body.JobID != nil {
		if jobID, err = fromWireID(*body.JobID); err != nil {
			return s.fail(ctx, err)
		}
	}

	provider, err := fromOptionalWireID(body.NominatedProviderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewSubmitRequestCommand(jobID, snapshot, provider, body.OfferExpiresAt)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.submitRequestHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := SubmitRequestResult{Job: toJob(result.Job), Quote: ToQuote(result.Quote)}
	if result.Offer != nil {
		o := toOffer(result.Offer)
		response.Offer = &o
	}

	return ctx.JSON(http.StatusCreated, response)
}

// GetJobOffers handles GET /api/v1/jobs/{jobId}/offers.
func (s *Server) GetJobOffers(ctx echo.Context, jobID openapi_types.UUID, params GetJobOffersParams) error {
	id, err := fromWireID(jobID)
	if err != nil {
		return s.fail(ctx, err)
	}
	provider, err := fromOptionalWireID(params.ProviderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetJobOffersQuery(id, provider)
	if err != nil {
		return s.fail(ctx, err)
	}

	response, err := s.jobOffersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toJobOffers(response))
}

// OfferJob handles POST /api/v1/jobs/{jobId}/offers.
func (s *Server) OfferJob(ctx echo.Context, jobID openapi_types.UUID) error {
	var body NewOffer
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := fromWireID(jobID)
	if err != nil {
		return s.fail(ctx, err)
	}
	provider, err := fromWireID(body.ProviderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewOfferJobCommand(id, provider, body.Price, body.ExpiresAt)
	if err != nil {
		return s.fail(ctx, err)
	}

	created, err := s.offerJobHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toOffer(created))
}

// CompleteJob handles POST /api/v1/jobs/{jobId}/complete.
func (s *Server) CompleteJob(ctx echo.Context, jobID openapi_types.UUID) error {
	id, err := fromWireID(jobID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewCompleteJobCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	completed, err := s.completeJobHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toJob(completed))
}

// AcceptOffer handles POST /api/v1/offers/{offerId}/accept.
func (s *Server) AcceptOffer(ctx echo.Context, offerID openapi_types.UUID) error {
	id, err := fromWireID(offerID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewAcceptOfferCommand(id)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.acceptOfferHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, OfferResolution{Offer: toOffer(result.Offer), Job: toJob(result.Job)})
}

// RejectOffer handles POST /api/v1/offers/{offerId}/reject.
func (s *Server) RejectOffer(ctx echo.Context, offerID openapi_types.UUID) error {
	var body Rejection
	if ctx.Request().ContentLength != 0 {
		if err := ctx.Bind(&body); err != nil {
			return badRequest(ctx, "Invalid request body")
		}
	}

	id, err := fromWireID(offerID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewRejectOfferCommand(id, body.Reason)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.rejectOfferHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, OfferResolution{Offer: toOffer(result.Offer), Job: toJob(result.Job)})
}

// fail maps application errors to status codes. Unexpected errors are logged
// and reported without details.
func (s *Server) fail(ctx echo.Context, err error) error {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", ctx.Request().Method),
			zap.String("path", ctx.Path()),
			zap.Error(err),
		)
		return ctx.JSON(status, Error{Code: status, Message: "Internal error"})
	}
	return ctx.JSON(status, Error{Code: status, Message: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidTransition), errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusConflict
	case errs.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: message})
}
