package service

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/ouge98-max/your-repo-sub000/internal/auth"
	"github.com/ouge98-max/your-repo-sub000/internal/middleware"
	"github.com/ouge98-max/your-repo-sub000/internal/rpc"
	"github.com/ouge98-max/your-repo-sub000/internal/storage"
)

// Deps are what the API handlers need.
type Deps struct {
	Store         storage.Store
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Logger        *slog.Logger
}

func handle[Req, Res any](mux *http.ServeMux, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts ...connect.HandlerOption) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// Register mounts every service on mux behind the metrics, auth and logging
// interceptors.
func Register(mux *http.ServeMux, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	opts := []connect.HandlerOption{
		rpc.WithJSON(),
		connect.WithInterceptors(
			middleware.MetricsInterceptor(),
			middleware.RequireAuth(deps.JWT, rpc.PublicProcedures),
			middleware.LoggingInterceptor(),
		),
	}

	authSvc := NewAuthService(deps.Authenticator, deps.JWT, deps.Logger)
	handle(mux, rpc.AuthRegisterProcedure, authSvc.Register, opts...)
	handle(mux, rpc.AuthLoginProcedure, authSvc.Login, opts...)

	users := NewUserService(deps.Store)
	handle(mux, rpc.UserGetCurrentUserProcedure, users.GetCurrentUser, opts...)
	handle(mux, rpc.UserGetAllUsersProcedure, users.GetAllUsers, opts...)
	handle(mux, rpc.UserSavePushSubscriptionProcedure, users.SavePushSubscription, opts...)

	wallet := NewWalletService(deps.Store)
	handle(mux, rpc.WalletSendMoneyProcedure, wallet.SendMoney, opts...)
	handle(mux, rpc.WalletAddMoneyProcedure, wallet.AddMoney, opts...)
	handle(mux, rpc.WalletWithdrawProcedure, wallet.Withdraw, opts...)
	handle(mux, rpc.WalletDepositToSavingsProcedure, wallet.DepositToSavings, opts...)
	handle(mux, rpc.WalletWithdrawFromSavingsProcedure, wallet.WithdrawFromSavings, opts...)
	handle(mux, rpc.WalletMobileRechargeProcedure, wallet.MobileRecharge, opts...)
	handle(mux, rpc.WalletPayBillProcedure, wallet.PayBill, opts...)
	handle(mux, rpc.WalletPurchaseTicketProcedure, wallet.PurchaseTicket, opts...)
	handle(mux, rpc.WalletInternationalTransferProcedure, wallet.InternationalTransfer, opts...)
	handle(mux, rpc.WalletBuyProductProcedure, wallet.BuyProduct, opts...)
	handle(mux, rpc.WalletPurchaseGiftProcedure, wallet.PurchaseGift, opts...)
	handle(mux, rpc.WalletListTransactionsProcedure, wallet.ListTransactions, opts...)

	chats := NewChatService(deps.Store)
	handle(mux, rpc.ChatGetChatsProcedure, chats.GetChats, opts...)
	handle(mux, rpc.ChatCreateChatProcedure, chats.CreateChat, opts...)
	handle(mux, rpc.ChatSendMessageProcedure, chats.SendMessage, opts...)
}
