package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/volunteer-credits/internal/repository"
)

type TransactionHandler struct {
	Ledger *repository.LedgerRepo
	Log    logrus.FieldLogger
}

func NewTransactionHandler(ledger *repository.LedgerRepo, log logrus.FieldLogger) *TransactionHandler {
	return &TransactionHandler{Ledger: ledger, Log: log}
}

// Mine returns the caller's ledger, newest first.
func (h *TransactionHandler) Mine(c echo.Context) error {
	uid, err := currentUser(c)
	if err != nil {
		return message(c, http.StatusUnauthorized, "Unauthorized")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	txs, err := h.Ledger.ListByUser(ctx, uid)
	if err != nil {
		return mapError(c, h.Log, err, "Failed to fetch transactions")
	}
	return c.JSON(http.StatusOK, txs)
}
