package main

import (
	"encoding/json"
	"log"
	"net/http"

	"seamline/auth"
	"seamline/billing"
	"seamline/bincard"
	"seamline/config"
	"seamline/dashboard"
	"seamline/export"
	"seamline/factory"
	"seamline/metrics"
	"seamline/model"
	"seamline/production"
	"seamline/report"
	"seamline/users"
	"seamline/workorder"

	"github.com/jmoiron/sqlx"
)

func SetupRoutes(mux *http.ServeMux, dbConn *sqlx.DB) {

	cfg := config.GetConfig()
	var billingClient *billing.Client
	if cfg.BillingBaseURL != "" && cfg.BillingServiceKey != "" {
		var err error
		billingClient, err = billing.NewClient(cfg.BillingBaseURL, cfg.BillingServiceKey)
		if err != nil {
			log.Printf("WARN: Billing client unavailable: %v", err)
		}
	} else {
		log.Printf("WARN: Billing backend not configured; checkout and portal endpoints disabled")
	}

	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/api/auth/register", auth.RegisterFactoryHandler(dbConn))
	mux.HandleFunc("/api/auth/login", auth.LoginHandler(dbConn))
	mux.HandleFunc("/api/auth/me", auth.Require(auth.MeHandler(dbConn)))

	mux.HandleFunc("/api/plans", billing.ListPlansHandler())
	mux.HandleFunc("/api/billing/checkout", auth.RequireRole(billing.CreateCheckoutHandler(billingClient), model.RoleAdmin))
	mux.HandleFunc("/api/billing/check", auth.RequireRole(billing.CheckSubscriptionHandler(dbConn, billingClient), model.RoleAdmin))
	mux.HandleFunc("/api/billing/portal", auth.RequireRole(billing.CustomerPortalHandler(billingClient), model.RoleAdmin))

	mux.HandleFunc("/api/factory/units", auth.RequireRoleForWrites(factory.UnitsHandler(dbConn), model.RoleManager))
	mux.HandleFunc("/api/factory/units/delete/", auth.RequireRole(factory.DeleteUnitHandler(dbConn), model.RoleManager))
	mux.HandleFunc("/api/factory/floors", auth.RequireRoleForWrites(factory.FloorsHandler(dbConn), model.RoleManager))
	mux.HandleFunc("/api/factory/floors/delete/", auth.RequireRole(factory.DeleteFloorHandler(dbConn), model.RoleManager))
	mux.HandleFunc("/api/factory/lines", auth.RequireRoleForWrites(factory.LinesHandler(dbConn), model.RoleManager))
	mux.HandleFunc("/api/factory/lines/active", auth.RequireRole(factory.SetLineActiveHandler(dbConn), model.RoleManager))
	mux.HandleFunc("/api/factory/stages", auth.RequireRoleForWrites(factory.StagesHandler(dbConn), model.RoleManager))
	mux.HandleFunc("/api/factory/stages/delete/", auth.RequireRole(factory.DeleteStageHandler(dbConn), model.RoleManager))
	mux.HandleFunc("/api/factory/blocker_types", auth.RequireRoleForWrites(factory.BlockerTypesHandler(dbConn), model.RoleManager))
	mux.HandleFunc("/api/factory/blocker_types/delete/", auth.RequireRole(factory.DeleteBlockerTypeHandler(dbConn), model.RoleManager))

	mux.HandleFunc("/api/users", auth.RequireRole(users.ListUsersHandler(dbConn), model.RoleAdmin))
	mux.HandleFunc("/api/users/create", auth.RequireRole(users.CreateUserHandler(dbConn), model.RoleAdmin))
	mux.HandleFunc("/api/users/update", auth.RequireRole(users.UpdateUserHandler(dbConn), model.RoleAdmin))
	mux.HandleFunc("/api/users/active", auth.RequireRole(users.SetActiveHandler(dbConn), model.RoleAdmin))

	mux.HandleFunc("/api/workorders/create", auth.RequireRole(workorder.CreateHandler(dbConn), model.RoleManager))
	mux.HandleFunc("/api/workorders/search", auth.Require(workorder.SearchHandler(dbConn)))
	mux.HandleFunc("/api/workorders/status", auth.RequireRole(workorder.SetStatusHandler(dbConn), model.RoleManager))

	for path, dept := range map[string]model.Department{
		"cutting":   model.DeptCutting,
		"sewing":    model.DeptSewing,
		"finishing": model.DeptFinishing,
	} {
		mux.HandleFunc("/api/"+path+"/targets/save", auth.RequireRole(production.SaveTargetHandler(dbConn, dept), model.RoleManager))
		mux.HandleFunc("/api/"+path+"/targets", auth.Require(production.ListHandler(dbConn, dept)))
		mux.HandleFunc("/api/"+path+"/actuals/save", auth.RequireRole(production.SaveActualHandler(dbConn, dept), model.RoleOperator, model.RoleManager))
		mux.HandleFunc("/api/"+path+"/actuals", auth.Require(production.ListHandler(dbConn, dept)))
		mux.HandleFunc("/api/"+path+"/actuals/delete/", auth.RequireRole(production.DeleteActualHandler(dbConn, dept), model.RoleManager))
		mux.HandleFunc("/api/export/"+path, auth.Require(export.ActualsHandler(dbConn, dept)))
	}

	mux.HandleFunc("/api/bincards/open", auth.RequireRole(bincard.OpenHandler(dbConn), model.RoleOperator, model.RoleManager))
	mux.HandleFunc("/api/bincards", auth.Require(bincard.ListHandler(dbConn)))
	mux.HandleFunc("/api/bincards/save", auth.RequireRole(bincard.SaveTransactionHandler(dbConn), model.RoleOperator, model.RoleManager))
	mux.HandleFunc("/api/bincards/ledger/", auth.Require(bincard.LedgerHandler(dbConn)))

	mux.HandleFunc("/api/dashboard/summary", auth.Require(dashboard.SummaryHandler(dbConn)))
	mux.HandleFunc("/api/dashboard/blockers", auth.Require(dashboard.BlockersHandler(dbConn)))
	mux.HandleFunc("/api/dashboard/orders", auth.Require(dashboard.OrderProgressHandler(dbConn)))

	mux.HandleFunc("/api/export/workorders", auth.Require(export.WorkOrdersHandler(dbConn)))
	mux.HandleFunc("/api/export/bincard/", auth.Require(export.BinCardLedgerHandler(dbConn)))

	mux.HandleFunc("/api/reports/daily", auth.RequireRole(report.DailyReportHandler(dbConn), model.RoleManager))

	mux.HandleFunc("/api/config", auth.RequireRole(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(config.GetConfig())
		case http.MethodPost:
			var newCfg config.Config
			if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			if err := config.SaveConfig(newCfg); err != nil {
				log.Printf("Failed to save config: %v", err)
				http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		}
	}, model.RoleAdmin))
}
