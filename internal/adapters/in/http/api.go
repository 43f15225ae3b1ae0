package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ServerInterface lists the operations of openapi.yaml.
type ServerInterface interface {
	// (POST /api/v1/quotes)
	CreateQuote(ctx echo.Context) error
	// (POST /api/v1/requests)
	SubmitRequest(ctx echo.Context) error
	// (GET /api/v1/jobs/{jobId}/offers)
	GetJobOffers(ctx echo.Context, jobID openapi_types.UUID, params GetJobOffersParams) error
	// (POST /api/v1/jobs/{jobId}/offers)
	OfferJob(ctx echo.Context, jobID openapi_types.UUID) error
	// (POST /api/v1/jobs/{jobId}/complete)
	CompleteJob(ctx echo.Context, jobID openapi_types.UUID) error
	// (POST /api/v1/offers/{offerId}/accept)
	AcceptOffer(ctx echo.Context, offerID openapi_types.UUID) error
	// (POST /api/v1/offers/{offerId}/reject)
	RejectOffer(ctx echo.Context, offerID openapi_types.UUID) error
}

// GetJobOffersParams holds the query parameters of GetJobOffers.
type GetJobOffersParams struct {
	ProviderID *openapi_types.UUID `form:"providerId,omitempty" json:"providerId,omitempty"`
}

// ServerInterfaceWrapper converts echo contexts to typed parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) CreateQuote(ctx echo.Context) error {
	return w.Handler.CreateQuote(ctx)
}

func (w *ServerInterfaceWrapper) SubmitRequest(ctx echo.Context) error {
	return w.Handler.SubmitRequest(ctx)
}

func (w *ServerInterfaceWrapper) GetJobOffers(ctx echo.Context) error {
	jobID, err := bindPathUUID(ctx, "jobId")
	if err != nil {
		return err
	}

	var params GetJobOffersParams
	err = runtime.BindQueryParameter("form", true, false, "providerId", ctx.QueryParams(), &params.ProviderID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter providerId: %s", err))
	}

	return w.Handler.GetJobOffers(ctx, jobID, params)
}

func (w *ServerInterfaceWrapper) OfferJob(ctx echo.Context) error {
	jobID, err := bindPathUUID(ctx, "jobId")
	if err != nil {
		return err
	}
	return w.Handler.OfferJob(ctx, jobID)
}

func (w *ServerInterfaceWrapper) CompleteJob(ctx echo.Context) error {
	jobID, err := bindPathUUID(ctx, "jobId")
	if err != nil {
		return err
	}
	return w.Handler.CompleteJob(ctx, jobID)
}

func (w *ServerInterfaceWrapper) AcceptOffer(ctx echo.Context) error {
	offerID, err := bindPathUUID(ctx, "offerId")
	if err != nil {
		return err
	}
	return w.Handler.AcceptOffer(ctx, offerID)
}

func (w *ServerInterfaceWrapper) RejectOffer(ctx echo.Context) error {
	offerID, err := bindPathUUID(ctx, "offerId")
	if err != nil {
		return err
	}
	return w.Handler.RejectOffer(ctx, offerID)
}

func bindPathUUID(ctx echo.Context, name string) (openapi_types.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return id, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
	}
	return id, nil
}

// EchoRouter is satisfied by *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds every operation to router.
func RegisterHandlers(router EchoRouter, si ServerInterface, m ...echo.MiddlewareFunc) {
	w := ServerInterfaceWrapper{Handler: si}

	router.POST("/api/v1/quotes", w.CreateQuote, m...)
	router.POST("/api/v1/requests", w.SubmitRequest, m...)
	router.GET("/api/v1/jobs/:jobId/offers", w.GetJobOffers, m...)
	router.POST("/api/v1/jobs/:jobId/offers", w.OfferJob, m...)
	router.POST("/api/v1/jobs/:jobId/complete", w.CompleteJob, m...)
	router.POST("/api/v1/offers/:offerId/accept", w.AcceptOffer, m...)
	router.POST("/api/v1/offers/:offerId/reject", w.RejectOffer, m...)
}
