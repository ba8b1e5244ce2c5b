package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/pricing"
	"github.com/ouge98-max/your-repo-sub000/internal/rpc"
	"github.com/ouge98-max/your-repo-sub000/internal/storage"
)

// MaxTransactionsPage caps ListTransactions.
const MaxTransactionsPage = 200

// WalletService implements every money movement. Each call is one ledger
// posting; a failed call moves nothing.
type WalletService struct {
	store storage.Store
}

func NewWalletService(store storage.Store) *WalletService {
	return &WalletService{store: store}
}

func (s *WalletService) apply(ctx context.Context, m storage.Movement) (*connect.Response[rpc.TransactionResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	m.UserID = userID

	if m.Amount <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, storage.ErrInvalidAmount)
	}

	tx, err := s.store.Apply(ctx, m)
	if err != nil {
		slog.Warn("Payment rejected", "type", m.Type, "user_id", userID, "amount", m.Amount, "error", err)
		return nil, storeError(err)
	}

	slog.Info("Payment posted",
		"type", tx.Type,
		"transaction_id", tx.ID,
		"user_id", userID,
		"amount", tx.Amount,
		"peer", tx.Peer,
	)
	return connect.NewResponse(&rpc.TransactionResponse{Transaction: tx}), nil
}

// recipient loads another user for person-to-person calls.
func (s *WalletService) recipient(ctx context.Context, recipientID string) (*models.User, error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if recipientID == "" {
		return nil, invalid("recipient is required")
	}
	if recipientID == userID {
		return nil, invalid("cannot send to yourself")
	}

	user, err := s.store.GetUserByID(ctx, recipientID)
	if err != nil {
		return nil, storeError(err)
	}
	if user == nil {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("recipient %s: %w", recipientID, storage.ErrNotFound))
	}
	return user, nil
}

func (s *WalletService) SendMoney(ctx context.Context, req *connect.Request[rpc.SendMoneyRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	slog.Info("SendMoney request received", "recipient_id", req.Msg.RecipientID, "amount", req.Msg.Amount)

	to, err := s.recipient(ctx, req.Msg.RecipientID)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, storage.Movement{
		RecipientID: to.ID,
		Type:        models.TxSendMoney,
		From:        storage.Main,
		To:          storage.External,
		Amount:      req.Msg.Amount,
		Peer:        to.Name,
		Note:        req.Msg.Note,
	})
}

func (s *WalletService) AddMoney(ctx context.Context, req *connect.Request[rpc.AddMoneyRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	if strings.TrimSpace(req.Msg.Source) == "" {
		return nil, invalid("funding source is required")
	}
	return s.apply(ctx, storage.Movement{
		Type:   models.TxAddMoney,
		From:   storage.External,
		To:     storage.Main,
		Amount: req.Msg.Amount,
		Peer:   req.Msg.Source,
	})
}

func (s *WalletService) Withdraw(ctx context.Context, req *connect.Request[rpc.WithdrawRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	if strings.TrimSpace(req.Msg.Destination) == "" {
		return nil, invalid("withdrawal destination is required")
	}
	return s.apply(ctx, storage.Movement{
		Type:   models.TxWithdraw,
		From:   storage.Main,
		To:     storage.External,
		Amount: req.Msg.Amount,
		Peer:   req.Msg.Destination,
	})
}

func (s *WalletService) DepositToSavings(ctx context.Context, req *connect.Request[rpc.SavingsRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	return s.apply(ctx, storage.Movement{
		Type:   models.TxSavingsDeposit,
		From:   storage.Main,
		To:     storage.Savings,
		Amount: req.Msg.Amount,
		Peer:   "Savings",
	})
}

func (s *WalletService) WithdrawFromSavings(ctx context.Context, req *connect.Request[rpc.SavingsRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	return s.apply(ctx, storage.Movement{
		Type:   models.TxSavingsWithdraw,
		From:   storage.Savings,
		To:     storage.Main,
		Amount: req.Msg.Amount,
		Peer:   "Savings",
	})
}

func (s *WalletService) MobileRecharge(ctx context.Context, req *connect.Request[rpc.MobileRechargeRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	if req.Msg.Operator == "" || req.Msg.Phone == "" {
		return nil, invalid("operator and phone are required")
	}
	return s.apply(ctx, storage.Movement{
		Type:   models.TxMobileRecharge,
		From:   storage.Main,
		To:     storage.External,
		Amount: req.Msg.Amount,
		Peer:   req.Msg.Operator,
		Note:   req.Msg.Phone,
	})
}

// PayBill charges the bill amount plus the biller's VAT.
func (s *WalletService) PayBill(ctx context.Context, req *connect.Request[rpc.PayBillRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	biller := req.Msg.Biller
	if biller.Name == "" || req.Msg.AccountNumber == "" {
		return nil, invalid("biller and account number are required")
	}
	if req.Msg.Amount <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, storage.ErrInvalidAmount)
	}

	tax, err := pricing.Tax(req.Msg.Amount, biller.VATRate)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	total := req.Msg.Amount
	if tax != nil {
		total = tax.Total
	}

	return s.apply(ctx, storage.Movement{
		Type:   models.TxBillPayment,
		From:   storage.Main,
		To:     storage.External,
		Amount: total,
		Peer:   biller.Name,
		Note:   req.Msg.AccountNumber,
		Tax:    tax,
	})
}

func (s *WalletService) PurchaseTicket(ctx context.Context, req *connect.Request[rpc.PurchaseTicketRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	t := req.Msg.Ticket
	if t.Provider == "" || t.From == "" || t.To == "" {
		return nil, invalid("ticket provider and route are required")
	}
	return s.apply(ctx, storage.Movement{
		Type:   models.TxTicketPurchase,
		From:   storage.Main,
		To:     storage.External,
		Amount: req.Msg.Amount,
		Peer:   t.Provider,
		Note:   fmt.Sprintf("%s %s to %s on %s", t.Kind, t.From, t.To, t.Date),
	})
}

// InternationalTransfer debits the local amount; the note records what the
// recipient receives at the quoted rate.
func (s *WalletService) InternationalTransfer(ctx context.Context, req *connect.Request[rpc.InternationalTransferRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	m := req.Msg
	if m.RecipientName == "" || m.Country == "" || m.BankAccount == "" || m.Currency == "" {
		return nil, invalid("recipient, country, bank account and currency are required")
	}
	received, err := pricing.Convert(m.Amount, m.ExchangeRate)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	return s.apply(ctx, storage.Movement{
		Type:   models.TxInternationalTransfer,
		From:   storage.Main,
		To:     storage.External,
		Amount: m.Amount,
		Peer:   m.RecipientName,
		Note:   fmt.Sprintf("%.2f %s to %s (%s)", received, m.Currency, m.Country, m.BankAccount),
	})
}

func (s *WalletService) BuyProduct(ctx context.Context, req *connect.Request[rpc.BuyProductRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	m := req.Msg
	if m.ProductID == "" || m.Quantity <= 0 {
		return nil, invalid("product and a positive quantity are required")
	}
	if strings.TrimSpace(m.DeliveryAddress) == "" {
		return nil, invalid("delivery address is required")
	}
	return s.apply(ctx, storage.Movement{
		Type:   models.TxProductPurchase,
		From:   storage.Main,
		To:     storage.External,
		Amount: m.Amount,
		Peer:   "Marketplace",
		Note:   fmt.Sprintf("%s x%d", m.ProductID, m.Quantity),
	})
}

// PurchaseGift charges the sender; the gift itself is not a balance credit.
func (s *WalletService) PurchaseGift(ctx context.Context, req *connect.Request[rpc.PurchaseGiftRequest]) (*connect.Response[rpc.TransactionResponse], error) {
	if req.Msg.GiftType == "" {
		return nil, invalid("gift type is required")
	}
	to, err := s.recipient(ctx, req.Msg.RecipientID)
	if err != nil {
		return nil, err
	}

	note := req.Msg.GiftType
	if req.Msg.Message != "" {
		note += ": " + req.Msg.Message
	}
	return s.apply(ctx, storage.Movement{
		Type:   models.TxGiftPurchase,
		From:   storage.Main,
		To:     storage.External,
		Amount: req.Msg.Amount,
		Peer:   to.Name,
		Note:   note,
	})
}

func (s *WalletService) ListTransactions(ctx context.Context, req *connect.Request[rpc.ListTransactionsRequest]) (*connect.Response[rpc.ListTransactionsResponse], error) {
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}

	limit := req.Msg.Limit
	if limit <= 0 || limit > MaxTransactionsPage {
		limit = MaxTransactionsPage
	}

	txs, err := s.store.ListTransactions(ctx, userID, limit)
	if err != nil {
		slog.Error("ListTransactions failed", "user_id", userID, "error", err)
		return nil, storeError(err)
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	return connect.NewResponse(&rpc.ListTransactionsResponse{Transactions: txs}), nil
}

