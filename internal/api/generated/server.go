package generated

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Сверка индекса с диском
	// (POST /api/v1/maintenance/reconcile)
	Reconcile(w http.ResponseWriter, r *http.Request)
	// Смена режима хранилища
	// (POST /api/v1/mode/transition)
	TransitionMode(w http.ResponseWriter, r *http.Request)
	// Информация о хранилище
	// (GET /api/v1/info)
	GetStorageInfo(w http.ResponseWriter, r *http.Request)
	// Liveness probe
	// (GET /health/live)
	HealthLive(w http.ResponseWriter, r *http.Request)
	// Readiness probe
	// (GET /health/ready)
	HealthReady(w http.ResponseWriter, r *http.Request)
	// Удаление медиафайла
	// (DELETE /media/{id})
	DeleteMedia(w http.ResponseWriter, r *http.Request, id MediaId)
	// Отдача медиафайла
	// (GET /media/{id})
	GetMedia(w http.ResponseWriter, r *http.Request, id MediaId)
	// Заголовки медиафайла
	// (HEAD /media/{id})
	HeadMedia(w http.ResponseWriter, r *http.Request, id MediaId)
	// Prometheus метрики
	// (GET /metrics)
	GetMetrics(w http.ResponseWriter, r *http.Request)
	// OpenAPI контракт
	// (GET /openapi.json)
	GetOpenAPI(w http.ResponseWriter, r *http.Request)
	// Загрузка аудиофайла
	// (POST /upload)
	UploadMedia(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

type MiddlewareFunc func(http.Handler) http.Handler

func (siw *ServerInterfaceWrapper) wrap(w http.ResponseWriter, r *http.Request, handler http.Handler) {
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

// Reconcile operation middleware
func (siw *ServerInterfaceWrapper) Reconcile(w http.ResponseWriter, r *http.Request) {
	siw.wrap(w, r, http.HandlerFunc(siw.Handler.Reconcile))
}

// TransitionMode operation middleware
func (siw *ServerInterfaceWrapper) TransitionMode(w http.ResponseWriter, r *http.Request) {
	siw.wrap(w, r, http.HandlerFunc(siw.Handler.TransitionMode))
}

// GetStorageInfo operation middleware
func (siw *ServerInterfaceWrapper) GetStorageInfo(w http.ResponseWriter, r *http.Request) {
	siw.wrap(w, r, http.HandlerFunc(siw.Handler.GetStorageInfo))
}

// HealthLive operation middleware
func (siw *ServerInterfaceWrapper) HealthLive(w http.ResponseWriter, r *http.Request) {
	siw.wrap(w, r, http.HandlerFunc(siw.Handler.HealthLive))
}

// HealthReady operation middleware
func (siw *ServerInterfaceWrapper) HealthReady(w http.ResponseWriter, r *http.Request) {
	siw.wrap(w, r, http.HandlerFunc(siw.Handler.HealthReady))
}

// bindMediaID извлекает path-параметр id.
func (siw *ServerInterfaceWrapper) bindMediaID(w http.ResponseWriter, r *http.Request) (MediaId, bool) {
	var id MediaId

	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return "", false
	}
	return id, true
}

// DeleteMedia operation middleware
func (siw *ServerInterfaceWrapper) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindMediaID(w, r)
	if !ok {
		return
	}
	siw.wrap(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.DeleteMedia(w, r, id)
	}))
}

// GetMedia operation middleware
func (siw *ServerInterfaceWrapper) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindMediaID(w, r)
	if !ok {
		return
	}
	siw.wrap(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetMedia(w, r, id)
	}))
}

// HeadMedia operation middleware
func (siw *ServerInterfaceWrapper) HeadMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindMediaID(w, r)
	if !ok {
		return
	}
	siw.wrap(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.HeadMedia(w, r, id)
	}))
}

// GetMetrics operation middleware
func (siw *ServerInterfaceWrapper) GetMetrics(w http.ResponseWriter, r *http.Request) {
	siw.wrap(w, r, http.HandlerFunc(siw.Handler.GetMetrics))
}

// GetOpenAPI operation middleware
func (siw *ServerInterfaceWrapper) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	siw.wrap(w, r, http.HandlerFunc(siw.Handler.GetOpenAPI))
}

// UploadMedia operation middleware
func (siw *ServerInterfaceWrapper) UploadMedia(w http.ResponseWriter, r *http.Request) {
	siw.wrap(w, r, http.HandlerFunc(siw.Handler.UploadMedia))
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// Handler creates http.Handler with routing matching OpenAPI spec.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

type ChiServerOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerFromMux creates http.Handler with routing matching OpenAPI spec based on the provided mux.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter: r,
	})
}

// HandlerWithOptions creates http.Handler with additional options
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter

	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/v1/maintenance/reconcile", wrapper.Reconcile)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/api/v1/mode/transition", wrapper.TransitionMode)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/api/v1/info", wrapper.GetStorageInfo)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health/live", wrapper.HealthLive)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/health/ready", wrapper.HealthReady)
	})
	r.Group(func(r chi.Router) {
		r.Delete(options.BaseURL+"/media/{id}", wrapper.DeleteMedia)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/media/{id}", wrapper.GetMedia)
	})
	r.Group(func(r chi.Router) {
		r.Head(options.BaseURL+"/media/{id}", wrapper.HeadMedia)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.GetMetrics)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/openapi.json", wrapper.GetOpenAPI)
	})
	r.Group(func(r chi.Router) {
		r.Post(options.BaseURL+"/upload", wrapper.UploadMedia)
	})

	return r
}
