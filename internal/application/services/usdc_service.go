package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/DanielPopoola/banza-wallet-proxy/internal/application"
	"github.com/DanielPopoola/banza-wallet-proxy/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"golang.org/x/sync/errgroup"
)

const (
	primaryType               = "TransferWithAuthorization"
	transferWithAuthorization = "transferWithAuthorization"
)

var authorizationTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	primaryType: {
		{Name: "from", Type: "address"},
		{Name: "to", Type: "address"},
		{Name: "value", Type: "uint256"},
		{Name: "validAfter", Type: "uint256"},
		{Name: "validBefore", Type: "uint256"},
		{Name: "nonce", Type: "bytes32"},
	},
}

// AuthorizationDomain is the EIP-712 domain of the USDC style token contract.
type AuthorizationDomain struct {
	Name    string
	Version string
	ChainID int64
	// TTL bounds how long a signed authorization stays valid
	TTL time.Duration
}

// TransferAuthorization is handed to the client for signing.
type TransferAuthorization struct {
	TypedMessage apitypes.TypedData `json:"typedMessage"`
	Digest       string             `json:"digest"`
}

type USDCTransferResult struct {
	Success     bool            `json:"success"`
	Transaction json.RawMessage `json:"transaction"`
}

// USDCService moves an EIP-3009 token through contract calls. There is no
// consent token: the client signs the authorization itself, so completion
// notifies the receiver straight away.
type USDCService struct {
	gateway    application.WalletGateway
	notifier   application.Notifier
	asset      domain.Asset
	authDomain AuthorizationDomain
	logger     *slog.Logger
	now        func() time.Time
	entropy    io.Reader
}

func NewUSDCService(
	gateway application.WalletGateway,
	notifier application.Notifier,
	asset domain.Asset,
	authDomain AuthorizationDomain,
	logger *slog.Logger,
) *USDCService {
	return &USDCService{
		gateway:    gateway,
		notifier:   notifier,
		asset:      asset,
		authDomain: authDomain,
		logger:     logger,
		now:        time.Now,
		entropy:    rand.Reader,
	}
}

func (s *USDCService) Balance(ctx context.Context, email string) (json.RawMessage, error) {
	wallet, err := s.gateway.GetWallet(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.gateway.ReadLambda(ctx, application.LambdaCall{
		Contract: s.asset.Address,
		Function: "balanceOf",
		Args:     []any{wallet.EthAddress},
	})
}

func (s *USDCService) Mint(ctx context.Context, cmd MintCommand) (json.RawMessage, error) {
	wallet, err := s.gateway.GetWallet(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	return s.gateway.InvokeLambda(ctx, application.LambdaCall{
		Contract: s.asset.Address,
		Function: "mint",
		Args:     []any{wallet.EthAddress, cmd.Amount.BaseUnits(s.asset.Decimals).String()},
		Reason:   fmt.Sprintf("Mint %s %s", cmd.Amount.String(), s.asset.Symbol),
	})
}

// InitiateTransfer builds the TransferWithAuthorization message the sender
// has to sign.
func (s *USDCService) InitiateTransfer(ctx context.Context, cmd TransferCommand) (*TransferAuthorization, error) {
	from, to, err := s.resolvePair(ctx, cmd.FromEmail, cmd.ToEmail)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, 32)
	if _, err := io.ReadFull(s.entropy, nonce); err != nil {
		return nil, application.NewInternalError(fmt.Errorf("generate nonce: %w", err))
	}

	validBefore := s.now().Add(s.authDomain.TTL).Unix()
	typed := apitypes.TypedData{
		Types:       authorizationTypes,
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              s.authDomain.Name,
			Version:           s.authDomain.Version,
			ChainId:           (*math.HexOrDecimal256)(big.NewInt(s.authDomain.ChainID)),
			VerifyingContract: common.HexToAddress(s.asset.Address).Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"from":        from.Hex(),
			"to":          to.Hex(),
			"value":       cmd.Amount.BaseUnits(s.asset.Decimals).String(),
			"validAfter":  "0",
			"validBefore": big.NewInt(validBefore).String(),
			"nonce":       hexutil.Encode(nonce),
		},
	}

	digest, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return nil, application.NewInternalError(fmt.Errorf("hash typed data: %w", err))
	}

	return &TransferAuthorization{
		TypedMessage: typed,
		Digest:       hexutil.Encode(digest),
	}, nil
}

// CompleteTransfer checks the signed authorization against the request,
// submits it to the token contract and emails the receiver.
func (s *USDCService) CompleteTransfer(ctx context.Context, cmd CompleteUSDCTransferCommand) (*USDCTransferResult, error) {
	auth, err := s.parseAuthorization(cmd)
	if err != nil {
		return nil, err
	}

	from, to, err := s.resolvePair(ctx, cmd.FromEmail, cmd.ToEmail)
	if err != nil {
		return nil, err
	}
	if auth.from != from {
		return nil, domain.NewInvalidTypedMessageError("from does not match the sender's wallet")
	}
	if auth.to != to {
		return nil, domain.NewInvalidTypedMessageError("to does not match the receiver's wallet")
	}

	signer, err := recoverSigner(auth.digest, auth.signature)
	if err != nil {
		return nil, err
	}
	if signer != from {
		return nil, domain.NewInvalidSignatureError("not signed by the sender")
	}

	v := auth.signature[64]
	if v < 27 {
		v += 27
	}

	raw, err := s.gateway.InvokeLambda(ctx, application.LambdaCall{
		Contract: s.asset.Address,
		Function: transferWithAuthorization,
		Args: []any{
			from.Hex(),
			to.Hex(),
			auth.value.String(),
			auth.validAfter.String(),
			auth.validBefore.String(),
			hexutil.Encode(auth.nonce),
			int(v),
			hexutil.Encode(auth.signature[:32]),
			hexutil.Encode(auth.signature[32:64]),
		},
		Reason: fmt.Sprintf("Transfer %s %s", cmd.Amount.Fixed(2), s.asset.Symbol),
	})
	if err != nil {
		return nil, err
	}

	// the email reports what the sender actually signed
	signed := domain.AmountFromBaseUnits(auth.value, s.asset.Decimals)
	notice := domain.TransferNotice{
		SenderEmail:   cmd.FromEmail,
		ReceiverEmail: cmd.ToEmail,
		Amount:        signed.Fixed(2),
		Asset:         s.asset.Symbol,
	}
	if err := s.notifier.NotifyTransfer(ctx, notice); err != nil {
		s.logger.Error("usdc transfer submitted but email failed",
			"receiver", cmd.ToEmail,
			"error", err,
		)
		return &USDCTransferResult{Success: false, Transaction: raw}, nil
	}

	return &USDCTransferResult{Success: true, Transaction: raw}, nil
}

func (s *USDCService) resolvePair(ctx context.Context, fromEmail, toEmail string) (common.Address, common.Address, error) {
	var from, to common.Address

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wallet, err := s.gateway.GetWallet(gctx, fromEmail)
		if err != nil {
			return err
		}
		from = common.HexToAddress(wallet.EthAddress)
		return nil
	})
	g.Go(func() error {
		wallet, err := s.gateway.GetWallet(gctx, toEmail)
		if err != nil {
			return err
		}
		to = common.HexToAddress(wallet.EthAddress)
		return nil
	})

	if err := g.Wait(); err != nil {
		return common.Address{}, common.Address{}, err
	}
	return from, to, nil
}

type signedAuthorization struct {
	from        common.Address
	to          common.Address
	value       *big.Int
	validAfter  *big.Int
	validBefore *big.Int
	nonce       []byte
	digest      []byte
	signature   []byte
}

func (s *USDCService) parseAuthorization(cmd CompleteUSDCTransferCommand) (*signedAuthorization, error) {
	var typed apitypes.TypedData
	if err := json.Unmarshal(cmd.TypedMessage, &typed); err != nil {
		return nil, domain.NewInvalidTypedMessageError("not a valid typed data document")
	}

	if typed.PrimaryType != primaryType {
		return nil, domain.NewInvalidTypedMessageError(fmt.Sprintf("primary type must be %s", primaryType))
	}
	if typed.Domain.Name != s.authDomain.Name || typed.Domain.Version != s.authDomain.Version {
		return nil, domain.NewInvalidTypedMessageError("domain name or version does not match the token")
	}
	if !strings.EqualFold(typed.Domain.VerifyingContract, s.asset.Address) {
		return nil, domain.NewInvalidTypedMessageError("verifying contract is not the configured token")
	}
	if typed.Domain.ChainId == nil || (*big.Int)(typed.Domain.ChainId).Cmp(big.NewInt(s.authDomain.ChainID)) != 0 {
		return nil, domain.NewInvalidTypedMessageError("chain id does not match")
	}

	auth := &signedAuthorization{}
	var err error
	if auth.from, err = addressField(typed.Message, "from"); err != nil {
		return nil, err
	}
	if auth.to, err = addressField(typed.Message, "to"); err != nil {
		return nil, err
	}
	if auth.value, err = uintField(typed.Message, "value"); err != nil {
		return nil, err
	}
	if auth.validAfter, err = uintField(typed.Message, "validAfter"); err != nil {
		return nil, err
	}
	if auth.validBefore, err = uintField(typed.Message, "validBefore"); err != nil {
		return nil, err
	}
	if auth.nonce, err = nonceField(typed.Message); err != nil {
		return nil, err
	}

	if auth.value.Cmp(cmd.Amount.BaseUnits(s.asset.Decimals)) != 0 {
		return nil, domain.NewInvalidTypedMessageError("value does not match amount")
	}
	if auth.validBefore.Cmp(big.NewInt(s.now().Unix())) <= 0 {
		return nil, domain.NewInvalidTypedMessageError("authorization has expired")
	}

	auth.digest, _, err = apitypes.TypedDataAndHash(typed)
	if err != nil {
		return nil, domain.NewInvalidTypedMessageError(err.Error())
	}

	auth.signature, err = hexutil.Decode(cmd.Signature)
	if err != nil || len(auth.signature) != crypto.SignatureLength {
		return nil, domain.NewInvalidSignatureError("expected 65 hex encoded bytes")
	}

	return auth, nil
}

func recoverSigner(digest, signature []byte) (common.Address, error) {
	sig := make([]byte, len(signature))
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, domain.NewInvalidSignatureError("cannot recover signer")
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func addressField(msg apitypes.TypedDataMessage, name string) (common.Address, error) {
	s, ok := msg[name].(string)
	if !ok || !common.IsHexAddress(s) {
		return common.Address{}, domain.NewInvalidTypedMessageError(name + " must be an address")
	}
	return common.HexToAddress(s), nil
}

// uintField accepts decimal or 0x prefixed strings and whole JSON numbers.
func uintField(msg apitypes.TypedDataMessage, name string) (*big.Int, error) {
	switch v := msg[name].(type) {
	case string:
		if n, ok := math.ParseBig256(v); ok && n.Sign() >= 0 {
			return n, nil
		}
	case float64:
		if v >= 0 && v == float64(int64(v)) {
			return big.NewInt(int64(v)), nil
		}
	}
	return nil, domain.NewInvalidTypedMessageError(name + " must be an unsigned integer")
}

func nonceField(msg apitypes.TypedDataMessage) ([]byte, error) {
	s, _ := msg["nonce"].(string)
	nonce, err := hexutil.Decode(s)
	if err != nil || len(nonce) != 32 {
		return nil, domain.NewInvalidTypedMessageError("nonce must be 32 hex encoded bytes")
	}
	return nonce, nil
}
