package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clubbet/domain/entities"
	"clubbet/domain/interfaces"
	"clubbet/domain/services"
	"clubbet/infrastructure"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// requestScope bundles the unit of work and the services constructed on top
// of its transaction-scoped repositories
type requestScope struct {
	uow       interfaces.UnitOfWork
	betSvc    interfaces.BetService
	walletSvc interfaces.WalletService
}

// beginScope starts a unit of work for one request. Callers must defer
// scope.uow.Rollback() and call Commit explicitly on success.
func (s *Server) beginScope(r *http.Request) (*requestScope, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(r.Context()); err != nil {
		return nil, err
	}

	resolver := s.resolver
	if resolver == nil {
		resolver = uow.MatchRepository()
	}

	walletSvc := services.NewWalletService(uow.WalletRepository())
	betSvc := services.NewBetService(uow.BetRepository(), walletSvc, resolver, uow.EventBus())

	return &requestScope{
		uow:       uow,
		betSvc:    betSvc,
		walletSvc: walletSvc,
	}, nil
}

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req placeBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	input := entities.CreateBetInput{
		UserID:     req.UserID,
		Structure:  entities.BetStructure(req.Structure),
		Stake:      req.Stake,
		SystemType: req.SystemType,
	}
	for _, leg := range req.Legs {
		input.Legs = append(input.Legs, entities.CreateBetLegInput{
			MatchID:   leg.MatchID,
			BetType:   leg.BetType,
			Selection: leg.Selection,
			Odds:      leg.Odds,
			Parameter: leg.Parameter,
		})
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	wallet, err := scope.walletSvc.GetOrCreateWallet(r.Context(), input.UserID)
	if err != nil {
		s.internalError(w, err)
		return
	}

	validation := scope.betSvc.ValidateBet(input, wallet.Balance)
	if !validation.Valid {
		writeJSON(w, http.StatusBadRequest, validationErrorResponse{
			Errors:   validation.Errors,
			Warnings: validation.Warnings,
		})
		return
	}

	bet, err := scope.betSvc.CreateBet(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := scope.uow.Commit(); err != nil {
		s.internalError(w, err)
		return
	}

	infrastructure.BetsPlacedTotal.WithLabelValues(string(bet.Structure)).Inc()
	stake, _ := bet.Stake.Float64()
	infrastructure.StakeAmountTotal.Add(stake)

	writeJSON(w, http.StatusCreated, placeBetResponse{
		Bet:      toBetResponse(bet),
		Warnings: validation.Warnings,
	})
}

func (s *Server) handleGetBet(w http.ResponseWriter, r *http.Request) {
	betID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	bet, err := scope.betSvc.GetBetByID(r.Context(), betID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	if bet == nil {
		writeError(w, http.StatusNotFound, "bet not found")
		return
	}

	writeJSON(w, http.StatusOK, toBetResponse(bet))
}

func (s *Server) handleSettleBet(w http.ResponseWriter, r *http.Request) {
	betID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	bet, err := scope.betSvc.SettleBet(r.Context(), betID, entities.BetStatus(req.Status))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := scope.uow.Commit(); err != nil {
		s.internalError(w, err)
		return
	}

	infrastructure.BetsSettledTotal.WithLabelValues(string(bet.Status)).Inc()

	writeJSON(w, http.StatusOK, toBetResponse(bet))
}

func (s *Server) handleCancelBet(w http.ResponseWriter, r *http.Request) {
	betID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	bet, err := scope.betSvc.CancelBet(r.Context(), betID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := scope.uow.Commit(); err != nil {
		s.internalError(w, err)
		return
	}

	infrastructure.BetsSettledTotal.WithLabelValues(string(bet.Status)).Inc()

	writeJSON(w, http.StatusOK, toBetResponse(bet))
}

// handleSettleLeg settles one leg and, when the parent is an accumulator
// whose legs are now all resolved, settles the whole bet in the same
// transaction.
func (s *Server) handleSettleLeg(w http.ResponseWriter, r *http.Request) {
	legID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	leg, err := scope.betSvc.SettleBetLeg(r.Context(), legID, entities.BetStatus(req.Status))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	settledBet, err := scope.betSvc.CheckAndSettleAccumulator(r.Context(), leg.BetID)
	if err != nil {
		s.internalError(w, err)
		return
	}

	if err := scope.uow.Commit(); err != nil {
		s.internalError(w, err)
		return
	}

	if settledBet != nil {
		infrastructure.BetsSettledTotal.WithLabelValues(string(settledBet.Status)).Inc()
		writeJSON(w, http.StatusOK, toBetResponse(settledBet))
		return
	}

	writeJSON(w, http.StatusOK, legResponse{
		ID:                 leg.ID,
		MatchID:            leg.MatchID,
		BetType:            leg.BetType,
		Selection:          leg.Selection,
		Odds:               leg.Odds,
		Parameter:          leg.Parameter,
		Status:             string(leg.Status),
		ResultDeterminedAt: leg.ResultDeterminedAt,
		HomeTeam:           leg.HomeTeam,
		AwayTeam:           leg.AwayTeam,
		MatchDate:          leg.MatchDate,
	})
}

func (s *Server) handleGetUserBets(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	filters, limit, offset, err := parseBetQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	var bets []*entities.Bet
	if r.URL.Query().Get("active") == "true" {
		bets, err = scope.betSvc.GetActiveBets(r.Context(), userID)
	} else {
		bets, err = scope.betSvc.GetUserBets(r.Context(), userID, filters, limit, offset)
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBetResponses(bets))
}

func (s *Server) handleGetUserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	stats, err := scope.betSvc.GetUserBetStats(r.Context(), userID)
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		TotalBets:     stats.TotalBets,
		PendingBets:   stats.PendingBets,
		WonBets:       stats.WonBets,
		LostBets:      stats.LostBets,
		VoidBets:      stats.VoidBets,
		TotalStaked:   stats.TotalStaked,
		TotalReturned: stats.TotalReturned,
		NetProfit:     stats.NetProfit,
		AverageOdds:   stats.AverageOdds,
		WinRate:       stats.WinRate,
		ROI:           stats.ROI,
	})
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	wallet, err := scope.walletSvc.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		s.internalError(w, err)
		return
	}
	summary, err := scope.walletSvc.WalletSummary(r.Context(), userID)
	if err != nil {
		s.internalError(w, err)
		return
	}

	// First access creates the wallet, so commit
	if err := scope.uow.Commit(); err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, walletResponse{
		UserID:         userID,
		Balance:        wallet.Balance,
		Currency:       wallet.Currency,
		TotalDeposited: summary.TotalDeposited,
		TotalWithdrawn: summary.TotalWithdrawn,
		TotalWagered:   summary.TotalWagered,
		TotalWon:       summary.TotalWon,
		NetProfit:      summary.NetProfit,
	})
}

func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var txType entities.TransactionType
	if raw := r.URL.Query().Get("type"); raw != "" {
		txType = entities.TransactionType(strings.ToUpper(strings.TrimSpace(raw)))
		if !txType.IsValid() {
			writeError(w, http.StatusBadRequest, "invalid type")
			return
		}
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	var txs []*entities.Transaction
	if txType != "" {
		txs, err = scope.walletSvc.TransactionsByType(r.Context(), userID, txType, limit)
	} else {
		txs, err = scope.walletSvc.TransactionHistory(r.Context(), userID, limit, offset)
	}
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleFunds(w, r, true)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleFunds(w, r, false)
}

func (s *Server) handleFunds(w http.ResponseWriter, r *http.Request, deposit bool) {
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req fundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	var tx *entities.Transaction
	if deposit {
		tx, err = scope.walletSvc.AddFunds(r.Context(), userID, req.Amount, req.Description)
	} else {
		tx, err = scope.walletSvc.WithdrawFunds(r.Context(), userID, req.Amount, req.Description)
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if err := scope.uow.Commit(); err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transactionResponse{
		ID:           tx.ID,
		Type:         string(tx.Type),
		Amount:       tx.Amount,
		BalanceAfter: tx.BalanceAfter,
		Description:  tx.Description,
		ReferenceID:  tx.ReferenceID,
		CreatedAt:    tx.CreatedAt,
	})
}

func (s *Server) handleGetMatchBets(w http.ResponseWriter, r *http.Request) {
	matchID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	scope, err := s.beginScope(r)
	if err != nil {
		s.internalError(w, err)
		return
	}
	defer scope.uow.Rollback()

	bets, err := scope.betSvc.GetBetsForMatch(r.Context(), matchID)
	if err != nil {
		s.internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBetResponses(bets))
}

// writeServiceError maps domain errors onto HTTP status codes
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrBetNotFound), errors.Is(err, entities.ErrBetLegNotFound), errors.Is(err, entities.ErrWalletNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entities.ErrBetAlreadySettled), errors.Is(err, entities.ErrBetLegSettled), errors.Is(err, entities.ErrInsufficientBalance):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrInvalidBetStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.internalError(w, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	log.WithError(err).Error("Request failed")
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parseBetQuery builds BetFilters from query parameters. Statuses and
// structures accept comma-separated lists.
func parseBetQuery(r *http.Request) (entities.BetFilters, int, int, error) {
	var filters entities.BetFilters
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filters.Statuses = append(filters.Statuses, entities.BetStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	if raw := q.Get("structure"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filters.Structures = append(filters.Structures, entities.BetStructure(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	if raw := q.Get("min_stake"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, 0, 0, errors.New("invalid min_stake")
		}
		filters.MinStake = &v
	}
	if raw := q.Get("max_stake"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return filters, 0, 0, errors.New("invalid max_stake")
		}
		filters.MaxStake = &v
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, 0, 0, errors.New("invalid from timestamp")
		}
		filters.DateFrom = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, 0, 0, errors.New("invalid to timestamp")
		}
		filters.DateTo = &t
	}

	limit, offset, err := parsePagination(r)
	if err != nil {
		return filters, 0, 0, err
	}
	return filters, limit, offset, nil
}

func parsePagination(r *http.Request) (int, int, error) {
	var limit, offset int
	q := r.URL.Query()

	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, errors.New("invalid limit")
		}
		limit = v
	}
	if raw := q.Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return 0, 0, errors.New("invalid offset")
		}
		offset = v
	}
	return limit, offset, nil
}
