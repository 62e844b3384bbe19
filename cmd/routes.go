package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(""))
	tenantMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("tenant"))
	firmMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("firm"))
	adminMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole("admin"))

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Get("/user/:id", authMiddleware.ThenFunc(app.userHandler.GetUserByID))

	// Applications
	mux.Post("/applications", tenantMiddleware.ThenFunc(app.applicationHandler.CreateApplication))
	mux.Get("/applications/:id", authMiddleware.ThenFunc(app.applicationHandler.GetApplication))
	mux.Get("/applications/:id/timeline", authMiddleware.ThenFunc(app.applicationHandler.GetTimeline))

	// Lifecycle decisions
	mux.Post("/applications/:id/submit", tenantMiddleware.ThenFunc(app.applicationHandler.Submit))
	mux.Post("/applications/:id/screen", firmMiddleware.ThenFunc(app.applicationHandler.Screen))
	mux.Post("/applications/:id/approve", adminMiddleware.ThenFunc(app.applicationHandler.Approve))
	mux.Post("/applications/:id/reject", firmMiddleware.ThenFunc(app.applicationHandler.Reject))
	mux.Post("/applications/:id/withdraw", tenantMiddleware.ThenFunc(app.applicationHandler.Withdraw))
	mux.Post("/applications/:id/terms", firmMiddleware.ThenFunc(app.applicationHandler.SetTerms))
	mux.Post("/applications/:id/countersign", adminMiddleware.ThenFunc(app.applicationHandler.Countersign))
	mux.Post("/applications/:id/occupy", firmMiddleware.ThenFunc(app.applicationHandler.Occupy))

	// Money
	mux.Get("/applications/:id/obligations", authMiddleware.ThenFunc(app.paymentHandler.ListObligations))
	mux.Get("/applications/:id/payments", authMiddleware.ThenFunc(app.paymentHandler.ListPayments))
	mux.Get("/applications/:id/allocation", authMiddleware.ThenFunc(app.applicationHandler.GetAllocation))
	mux.Get("/applications/:id/deposit", authMiddleware.ThenFunc(app.applicationHandler.GetDepositView))

	// Lease documents
	mux.Post("/applications/:id/documents", firmMiddleware.ThenFunc(app.documentHandler.Upload))
	mux.Get("/applications/:id/documents", authMiddleware.ThenFunc(app.documentHandler.List))

	// Provider callback: signature-authenticated, no JWT.
	mux.Post("/webhooks/payments", standardMiddleware.ThenFunc(app.paymentHandler.ProviderWebhook))

	// Status stream
	mux.Get("/ws", authMiddleware.ThenFunc(app.StatusSocketHandler))

	// Push tokens
	mux.Post("/notify/token", authMiddleware.ThenFunc(app.notifyHandler.RegisterToken))
	mux.Del("/notify/token/:token", authMiddleware.ThenFunc(app.notifyHandler.DeleteToken))

	return mux
}
