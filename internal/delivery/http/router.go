package http

import (
	"net/http"

	"clinic-management/internal/delivery/http/handler"
	"clinic-management/internal/delivery/http/middleware"
	"clinic-management/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	patientHandler      *handler.PatientHandler
	appointmentHandler  *handler.AppointmentHandler
	paymentHandler      *handler.PaymentHandler
	prescriptionHandler *handler.PrescriptionHandler
	labResultHandler    *handler.LabResultHandler
	reportHandler       *handler.ReportHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	metricsMiddleware   *middleware.MetricsMiddleware
	authRateLimiter     *middleware.IPRateLimiter
	metricsHandler      http.Handler
}

type RouterDeps struct {
	AuthHandler         *handler.AuthHandler
	PatientHandler      *handler.PatientHandler
	AppointmentHandler  *handler.AppointmentHandler
	PaymentHandler      *handler.PaymentHandler
	PrescriptionHandler *handler.PrescriptionHandler
	LabResultHandler    *handler.LabResultHandler
	ReportHandler       *handler.ReportHandler
	AuthMiddleware      *middleware.AuthMiddleware
	CORSMiddleware      *middleware.CORSMiddleware
	MetricsMiddleware   *middleware.MetricsMiddleware
	AuthRateLimiter     *middleware.IPRateLimiter
	// MetricsHandler serves /metrics when set
	MetricsHandler http.Handler
}

func NewRouter(deps RouterDeps) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         deps.AuthHandler,
		patientHandler:      deps.PatientHandler,
		appointmentHandler:  deps.AppointmentHandler,
		paymentHandler:      deps.PaymentHandler,
		prescriptionHandler: deps.PrescriptionHandler,
		labResultHandler:    deps.LabResultHandler,
		reportHandler:       deps.ReportHandler,
		authMiddleware:      deps.AuthMiddleware,
		corsMiddleware:      deps.CORSMiddleware,
		metricsMiddleware:   deps.MetricsMiddleware,
		authRateLimiter:     deps.AuthRateLimiter,
		metricsHandler:      deps.MetricsHandler,
	}
}

func (r *Router) Setup() *mux.Router {
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public, rate limited)
	auth := api.PathPrefix("/auth").Subrouter()
	if r.authRateLimiter != nil {
		auth.Use(r.authRateLimiter.Handle)
	}
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Everything below requires a valid access token
	protected := api.PathPrefix("").Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/auth/logout", r.authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Admin routes
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/staff", r.authHandler.RegisterStaff).Methods(http.MethodPost)
	admin.HandleFunc("/roles", r.authHandler.ListRoles).Methods(http.MethodGet)

	reports := protected.PathPrefix("/reports").Subrouter()
	reports.Use(middleware.RequireAdmin)
	reports.HandleFunc("/revenue", r.reportHandler.GetRevenueByDay).Methods(http.MethodGet)
	reports.HandleFunc("/payment-methods", r.reportHandler.GetPaymentMethods).Methods(http.MethodGet)
	reports.HandleFunc("/appointment-statuses", r.reportHandler.GetAppointmentStatuses).Methods(http.MethodGet)
	reports.HandleFunc("/outstanding", r.reportHandler.GetOutstandingBalances).Methods(http.MethodGet)
	reports.HandleFunc("/summary", r.reportHandler.GetDashboardSummary).Methods(http.MethodGet)

	// Read access for all staff
	protected.HandleFunc("/patients", r.patientHandler.ListPatients).Methods(http.MethodGet)
	protected.HandleFunc("/patients/waiting", r.patientHandler.ListWaiting).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{id}", r.patientHandler.GetPatient).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{id}/appointments", r.appointmentHandler.ListPatientAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{id}/prescriptions", r.prescriptionHandler.ListPatientPrescriptions).Methods(http.MethodGet)
	protected.HandleFunc("/patients/{id}/lab-results", r.labResultHandler.ListPatientLabResults).Methods(http.MethodGet)
	protected.HandleFunc("/appointments", r.appointmentHandler.ListAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/serial/{serial}", r.appointmentHandler.GetAppointmentBySerial).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/prescriptions/{id}", r.prescriptionHandler.GetPrescription).Methods(http.MethodGet)
	protected.HandleFunc("/lab-results", r.labResultHandler.ListLabResults).Methods(http.MethodGet)
	protected.HandleFunc("/lab-results/{id}", r.labResultHandler.GetLabResult).Methods(http.MethodGet)

	// Front desk: registration, scheduling and billing
	frontDesk := protected.NewRoute().Subrouter()
	frontDesk.Use(middleware.RequireFrontDesk)
	frontDesk.HandleFunc("/patients", r.patientHandler.CreatePatient).Methods(http.MethodPost)
	frontDesk.HandleFunc("/patients/{id}", r.patientHandler.UpdatePatient).Methods(http.MethodPut)
	frontDesk.HandleFunc("/patients/{id}", r.patientHandler.DeletePatient).Methods(http.MethodDelete)
	frontDesk.HandleFunc("/patients/{id}/waiting", r.patientHandler.SetWaiting).Methods(http.MethodPut)
	frontDesk.HandleFunc("/appointments", r.appointmentHandler.CreateAppointment).Methods(http.MethodPost)
	frontDesk.HandleFunc("/appointments/{id}", r.appointmentHandler.UpdateAppointment).Methods(http.MethodPut)
	frontDesk.HandleFunc("/appointments/{id}/status", r.appointmentHandler.UpdateAppointmentStatus).Methods(http.MethodPatch)
	frontDesk.HandleFunc("/appointments/{id}", r.appointmentHandler.DeleteAppointment).Methods(http.MethodDelete)
	frontDesk.HandleFunc("/payments", r.paymentHandler.CreatePayment).Methods(http.MethodPost)
	frontDesk.HandleFunc("/payments", r.paymentHandler.ListPayments).Methods(http.MethodGet)
	frontDesk.HandleFunc("/payments/{id}", r.paymentHandler.GetPayment).Methods(http.MethodGet)
	frontDesk.HandleFunc("/payments/{id}", r.paymentHandler.UpdatePayment).Methods(http.MethodPut)
	frontDesk.HandleFunc("/payments/{id}", r.paymentHandler.DeletePayment).Methods(http.MethodDelete)
	frontDesk.HandleFunc("/patients/{id}/payments", r.paymentHandler.ListPatientPayments).Methods(http.MethodGet)

	// Clinicians: prescriptions and lab results
	clinical := protected.NewRoute().Subrouter()
	clinical.Use(middleware.RequireClinician)
	clinical.HandleFunc("/prescriptions", r.prescriptionHandler.CreatePrescription).Methods(http.MethodPost)
	clinical.HandleFunc("/prescriptions/{id}", r.prescriptionHandler.UpdatePrescription).Methods(http.MethodPut)
	clinical.HandleFunc("/prescriptions/{id}", r.prescriptionHandler.DeletePrescription).Methods(http.MethodDelete)
	clinical.HandleFunc("/lab-results", r.labResultHandler.CreateLabResult).Methods(http.MethodPost)
	clinical.HandleFunc("/lab-results/{id}", r.labResultHandler.UpdateLabResult).Methods(http.MethodPut)
	clinical.HandleFunc("/lab-results/{id}", r.labResultHandler.DeleteLabResult).Methods(http.MethodDelete)

	// Preflight requests need a matching route for router middleware to run
	r.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if r.metricsMiddleware != nil {
		r.router.Use(r.metricsMiddleware.Handle)
	}
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.Success(w, http.StatusOK, "OK", map[string]string{"status": "ok"})
}
