package middleware

import (
	"log"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/util"
)

type contextKey string

const accountKey contextKey = "account"

// AccountFromConf turns a configured identity into a session account
func AccountFromConf(ac util.AccountConf, publicKeyHash string) domain.Account {
	return domain.Account{
		Handle:         ac.Handle,
		DisplayName:    ac.Name,
		AccountAddress: ac.Account,
		WalletAddress:  ac.Wallet,
		PublicKeyHash:  publicKeyHash,
	}
}

// ResolveAccount maps an SSH key to the configured account. Unknown or
// missing keys get the zero account, a read-only session.
func ResolveAccount(conf *util.AppConfig, pk ssh.PublicKey) domain.Account {
	if pk == nil {
		return domain.Account{}
	}
	hash := util.PkToHash(util.PublicKeyToString(pk))
	ac, ok := conf.FindAccount(hash)
	if !ok {
		return domain.Account{PublicKeyHash: hash}
	}
	return AccountFromConf(ac, hash)
}

// AccountFromContext returns the account stored by AuthMiddleware
func AccountFromContext(ctx ssh.Context) domain.Account {
	if acc, ok := ctx.Value(accountKey).(domain.Account); ok {
		return acc
	}
	return domain.Account{}
}

func AuthMiddleware(conf *util.AppConfig) wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			util.LogPublicKey(s)
			acc := ResolveAccount(conf, s.PublicKey())
			if acc.IsLoggedIn() {
				log.Printf("Session for @%s (%s)", acc.Handle, acc.AccountAddress)
			} else {
				log.Printf("Read-only session for %s", s.User())
			}
			s.Context().SetValue(accountKey, acc)
			h(s)
		}
	}
}
