package rpc

const (
	AuthServiceName   = "superapp.v1.AuthService"
	UserServiceName   = "superapp.v1.UserService"
	WalletServiceName = "superapp.v1.WalletService"
	ChatServiceName   = "superapp.v1.ChatService"
)

// Procedure paths.
const (
	AuthRegisterProcedure = "/" + AuthServiceName + "/Register"
	AuthLoginProcedure    = "/" + AuthServiceName + "/Login"

	UserGetCurrentUserProcedure       = "/" + UserServiceName + "/GetCurrentUser"
	UserGetAllUsersProcedure          = "/" + UserServiceName + "/GetAllUsers"
	UserSavePushSubscriptionProcedure = "/" + UserServiceName + "/SavePushSubscription"

	WalletSendMoneyProcedure             = "/" + WalletServiceName + "/SendMoney"
	WalletAddMoneyProcedure              = "/" + WalletServiceName + "/AddMoney"
	WalletWithdrawProcedure              = "/" + WalletServiceName + "/Withdraw"
	WalletDepositToSavingsProcedure      = "/" + WalletServiceName + "/DepositToSavings"
	WalletWithdrawFromSavingsProcedure   = "/" + WalletServiceName + "/WithdrawFromSavings"
	WalletMobileRechargeProcedure        = "/" + WalletServiceName + "/MobileRecharge"
	WalletPayBillProcedure               = "/" + WalletServiceName + "/PayBill"
	WalletPurchaseTicketProcedure        = "/" + WalletServiceName + "/PurchaseTicket"
	WalletInternationalTransferProcedure = "/" + WalletServiceName + "/InternationalTransfer"
	WalletBuyProductProcedure            = "/" + WalletServiceName + "/BuyProduct"
	WalletPurchaseGiftProcedure          = "/" + WalletServiceName + "/PurchaseGift"
	WalletListTransactionsProcedure      = "/" + WalletServiceName + "/ListTransactions"

	ChatGetChatsProcedure    = "/" + ChatServiceName + "/GetChats"
	ChatCreateChatProcedure  = "/" + ChatServiceName + "/CreateChat"
	ChatSendMessageProcedure = "/" + ChatServiceName + "/SendMessage"
)

// PublicProcedures do not require a bearer token.
var PublicProcedures = map[string]bool{
	AuthRegisterProcedure: true,
	AuthLoginProcedure:    true,
}
