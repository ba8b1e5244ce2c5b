// Package models defines the domain records shared by the superapp client core
// and the backend API server.
//
// # Wallet
//
//   - User: an account with a wallet balance and a savings balance
//   - Transaction: the normalized receipt of any money movement
//   - TaxBreakdown: optional VAT split attached to a Transaction
//
// # Commerce
//
//   - Biller, Ticket, CartItem: the shapes payment intents carry to the backend
//
// # Chat
//
//   - Chat, Message: conversations and their messages
//   - QueuedMessage: a message waiting in the offline outbox
//
// Relationships are expressed with ID strings rather than pointers so every model
// can travel over the wire and into the local cache unchanged.
package models
