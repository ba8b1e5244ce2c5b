// Package backend is the Connect client for the superapp API.
package backend

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"connectrpc.com/connect"

	"github.com/ouge98-max/your-repo-sub000/internal/app"
	"github.com/ouge98-max/your-repo-sub000/internal/models"
	"github.com/ouge98-max/your-repo-sub000/internal/rpc"
)

// Client calls the backend on behalf of one signed-in session.
type Client struct {
	mu    sync.RWMutex
	token string

	register *connect.Client[rpc.RegisterRequest, rpc.AuthResponse]
	login    *connect.Client[rpc.LoginRequest, rpc.AuthResponse]

	currentUser *connect.Client[rpc.Empty, rpc.UserResponse]
	allUsers    *connect.Client[rpc.Empty, rpc.UsersResponse]
	savePush    *connect.Client[rpc.SavePushSubscriptionRequest, rpc.Empty]

	sendMoney       *connect.Client[rpc.SendMoneyRequest, rpc.TransactionResponse]
	addMoney        *connect.Client[rpc.AddMoneyRequest, rpc.TransactionResponse]
	withdraw        *connect.Client[rpc.WithdrawRequest, rpc.TransactionResponse]
	depositSavings  *connect.Client[rpc.SavingsRequest, rpc.TransactionResponse]
	withdrawSavings *connect.Client[rpc.SavingsRequest, rpc.TransactionResponse]
	recharge        *connect.Client[rpc.MobileRechargeRequest, rpc.TransactionResponse]
	payBill         *connect.Client[rpc.PayBillRequest, rpc.TransactionResponse]
	ticket          *connect.Client[rpc.PurchaseTicketRequest, rpc.TransactionResponse]
	transfer        *connect.Client[rpc.InternationalTransferRequest, rpc.TransactionResponse]
	buyProduct      *connect.Client[rpc.BuyProductRequest, rpc.TransactionResponse]
	gift            *connect.Client[rpc.PurchaseGiftRequest, rpc.TransactionResponse]
	transactions    *connect.Client[rpc.ListTransactionsRequest, rpc.ListTransactionsResponse]

	chats       *connect.Client[rpc.Empty, rpc.ChatsResponse]
	createChat  *connect.Client[rpc.CreateChatRequest, rpc.ChatResponse]
	sendMessage *connect.Client[rpc.SendMessageRequest, rpc.MessageResponse]
}

var _ app.Backend = (*Client)(nil)

// New creates a client for the API at baseURL.
func New(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{}
	opts = append([]connect.ClientOption{
		rpc.WithJSON(),
		connect.WithInterceptors(c.bearer()),
	}, opts...)

	c.register = connect.NewClient[rpc.RegisterRequest, rpc.AuthResponse](httpClient, baseURL+rpc.AuthRegisterProcedure, opts...)
	c.login = connect.NewClient[rpc.LoginRequest, rpc.AuthResponse](httpClient, baseURL+rpc.AuthLoginProcedure, opts...)

	c.currentUser = connect.NewClient[rpc.Empty, rpc.UserResponse](httpClient, baseURL+rpc.UserGetCurrentUserProcedure, opts...)
	c.allUsers = connect.NewClient[rpc.Empty, rpc.UsersResponse](httpClient, baseURL+rpc.UserGetAllUsersProcedure, opts...)
	c.savePush = connect.NewClient[rpc.SavePushSubscriptionRequest, rpc.Empty](httpClient, baseURL+rpc.UserSavePushSubscriptionProcedure, opts...)

	c.sendMoney = connect.NewClient[rpc.SendMoneyRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletSendMoneyProcedure, opts...)
	c.addMoney = connect.NewClient[rpc.AddMoneyRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletAddMoneyProcedure, opts...)
	c.withdraw = connect.NewClient[rpc.WithdrawRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletWithdrawProcedure, opts...)
	c.depositSavings = connect.NewClient[rpc.SavingsRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletDepositToSavingsProcedure, opts...)
	c.withdrawSavings = connect.NewClient[rpc.SavingsRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletWithdrawFromSavingsProcedure, opts...)
	c.recharge = connect.NewClient[rpc.MobileRechargeRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletMobileRechargeProcedure, opts...)
	c.payBill = connect.NewClient[rpc.PayBillRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletPayBillProcedure, opts...)
	c.ticket = connect.NewClient[rpc.PurchaseTicketRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletPurchaseTicketProcedure, opts...)
	c.transfer = connect.NewClient[rpc.InternationalTransferRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletInternationalTransferProcedure, opts...)
	c.buyProduct = connect.NewClient[rpc.BuyProductRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletBuyProductProcedure, opts...)
	c.gift = connect.NewClient[rpc.PurchaseGiftRequest, rpc.TransactionResponse](httpClient, baseURL+rpc.WalletPurchaseGiftProcedure, opts...)
	c.transactions = connect.NewClient[rpc.ListTransactionsRequest, rpc.ListTransactionsResponse](httpClient, baseURL+rpc.WalletListTransactionsProcedure, opts...)

	c.chats = connect.NewClient[rpc.Empty, rpc.ChatsResponse](httpClient, baseURL+rpc.ChatGetChatsProcedure, opts...)
	c.createChat = connect.NewClient[rpc.CreateChatRequest, rpc.ChatResponse](httpClient, baseURL+rpc.ChatCreateChatProcedure, opts...)
	c.sendMessage = connect.NewClient[rpc.SendMessageRequest, rpc.MessageResponse](httpClient, baseURL+rpc.ChatSendMessageProcedure, opts...)

	return c
}

// SetToken sets the bearer token sent with every call.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) bearer() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient && !rpc.PublicProcedures[req.Spec().Procedure] {
				if token := c.Token(); token != "" {
					req.Header().Set("Authorization", "Bearer "+token)
				}
			}
			return next(ctx, req)
		}
	}
}

func call[Req, Res any](ctx context.Context, client *connect.Client[Req, Res], msg *Req) (*Res, error) {
	resp, err := client.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Register creates an account and keeps the returned session token.
func (c *Client) Register(ctx context.Context, email, name, phone, password string) (*rpc.AuthResponse, error) {
	resp, err := call(ctx, c.register, &rpc.RegisterRequest{Email: email, Name: name, Phone: phone, Password: password})
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return resp, nil
}

// Login signs in and keeps the returned session token.
func (c *Client) Login(ctx context.Context, email, password string) (*rpc.AuthResponse, error) {
	resp, err := call(ctx, c.login, &rpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return resp, nil
}

func (c *Client) GetCurrentUser(ctx context.Context) (*models.User, error) {
	resp, err := call(ctx, c.currentUser, &rpc.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) GetAllUsers(ctx context.Context) ([]models.User, error) {
	resp, err := call(ctx, c.allUsers, &rpc.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) SavePushSubscription(ctx context.Context, sub models.PushSubscription) error {
	_, err := call(ctx, c.savePush, &rpc.SavePushSubscriptionRequest{Subscription: sub})
	return err
}

func transaction(resp *rpc.TransactionResponse, err error) (*models.Transaction, error) {
	if err != nil {
		return nil, err
	}
	return resp.Transaction, nil
}

func (c *Client) SendMoney(ctx context.Context, recipientID string, amount float64, note string) (*models.Transaction, error) {
	return transaction(call(ctx, c.sendMoney, &rpc.SendMoneyRequest{RecipientID: recipientID, Amount: amount, Note: note}))
}

func (c *Client) AddMoney(ctx context.Context, source string, amount float64) (*models.Transaction, error) {
	return transaction(call(ctx, c.addMoney, &rpc.AddMoneyRequest{Source: source, Amount: amount}))
}

func (c *Client) Withdraw(ctx context.Context, destination string, amount float64) (*models.Transaction, error) {
	return transaction(call(ctx, c.withdraw, &rpc.WithdrawRequest{Destination: destination, Amount: amount}))
}

func (c *Client) DepositToSavings(ctx context.Context, amount float64) (*models.Transaction, error) {
	return transaction(call(ctx, c.depositSavings, &rpc.SavingsRequest{Amount: amount}))
}

func (c *Client) WithdrawFromSavings(ctx context.Context, amount float64) (*models.Transaction, error) {
	return transaction(call(ctx, c.withdrawSavings, &rpc.SavingsRequest{Amount: amount}))
}

func (c *Client) PerformMobileRecharge(ctx context.Context, operatorName, phone string, amount float64) (*models.Transaction, error) {
	return transaction(call(ctx, c.recharge, &rpc.MobileRechargeRequest{Operator: operatorName, Phone: phone, Amount: amount}))
}

func (c *Client) PerformBillPayment(ctx context.Context, biller models.Biller, accountNumber string, amount float64) (*models.Transaction, error) {
	return transaction(call(ctx, c.payBill, &rpc.PayBillRequest{Biller: biller, AccountNumber: accountNumber, Amount: amount}))
}

func (c *Client) PurchaseTicket(ctx context.Context, ticket models.Ticket, amount float64) (*models.Transaction, error) {
	return transaction(call(ctx, c.ticket, &rpc.PurchaseTicketRequest{Ticket: ticket, Amount: amount}))
}

func (c *Client) SendInternationalTransfer(ctx context.Context, recipientName, country, bankAccount, currency string, exchangeRate, amount float64) (*models.Transaction, error) {
	return transaction(call(ctx, c.transfer, &rpc.InternationalTransferRequest{
		RecipientName: recipientName,
		Country:       country,
		BankAccount:   bankAccount,
		Currency:      currency,
		ExchangeRate:  exchangeRate,
		Amount:        amount,
	}))
}

func (c *Client) BuyProduct(ctx context.Context, productID string, quantity int, deliveryAddress string, amount float64) (*models.Transaction, error) {
	return transaction(call(ctx, c.buyProduct, &rpc.BuyProductRequest{
		ProductID:       productID,
		Quantity:        quantity,
		DeliveryAddress: deliveryAddress,
		Amount:          amount,
	}))
}

func (c *Client) PurchaseGift(ctx context.Context, recipientID, giftType, message string, amount float64) (*models.Transaction, error) {
	return transaction(call(ctx, c.gift, &rpc.PurchaseGiftRequest{RecipientID: recipientID, GiftType: giftType, Message: message, Amount: amount}))
}

// ListTransactions returns the signed-in user's transactions, newest first.
func (c *Client) ListTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	resp, err := call(ctx, c.transactions, &rpc.ListTransactionsRequest{Limit: limit})
	if err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

func (c *Client) GetChats(ctx context.Context) ([]models.Chat, error) {
	resp, err := call(ctx, c.chats, &rpc.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

// CreateChat starts a chat between the signed-in user and members.
func (c *Client) CreateChat(ctx context.Context, name string, members []string) (*models.Chat, error) {
	resp, err := call(ctx, c.createChat, &rpc.CreateChatRequest{Name: name, Members: members})
	if err != nil {
		return nil, err
	}
	return resp.Chat, nil
}

// SendMessage sends msg to chatID. msg.ID is passed as the client ID so a
// replayed message is stored once.
func (c *Client) SendMessage(ctx context.Context, chatID string, msg models.Message) (*models.Message, error) {
	resp, err := call(ctx, c.sendMessage, &rpc.SendMessageRequest{
		ChatID:    chatID,
		ClientID:  msg.ID,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		return nil, err
	}
	return resp.Message, nil
}
