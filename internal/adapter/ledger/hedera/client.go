package hedera

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hedera-asset-gateway/config"
	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"

	hiero "github.com/hiero-ledger/hiero-sdk-go/v2/sdk"
	"github.com/rs/zerolog"
)

// Per-transaction fee caps in HBAR. These bound the worst case accepted per
// transaction kind; the network charges the actual fee.
const (
	fileCreateFee     = 5
	contractCreateFee = 30
	tokenCreateFee    = 40
	transferFee       = 10
	tokenMintFee      = 30
)

// Client implements ports.LedgerClient against the Hedera network. All
// transactions are signed by the single operator identity.
type Client struct {
	sdk         *hiero.Client
	operatorID  hiero.AccountID
	operatorKey hiero.PrivateKey
	network     domain.NetworkMode
	log         zerolog.Logger
}

// NewClient creates a connected client for the configured network.
func NewClient(cfg config.LedgerConfig, log zerolog.Logger) (*Client, error) {
	operatorID, err := hiero.AccountIDFromString(cfg.OperatorAccount)
	if err != nil {
		return nil, fmt.Errorf("parsing operator account: %w", err)
	}

	operatorKey, err := hiero.PrivateKeyFromString(cfg.OperatorKey)
	if err != nil {
		return nil, fmt.Errorf("parsing operator key: %w", err)
	}

	network := domain.NetworkMode(cfg.Network)
	var sdk *hiero.Client
	if network.HighStakes() {
		sdk = hiero.ClientForMainnet()
	} else {
		sdk = hiero.ClientForTestnet()
	}

	sdk.SetOperator(operatorID, operatorKey)
	sdk.SetDefaultMaxTransactionFee(hiero.NewHbar(float64(cfg.MaxTransactionFee)))
	sdk.SetDefaultMaxQueryPayment(hiero.NewHbar(float64(cfg.MaxQueryPayment)))
	if cfg.CallTimeout > 0 {
		timeout := cfg.CallTimeout
		sdk.SetRequestTimeout(&timeout)
	}

	log.Info().
		Str("network", string(network)).
		Str("operator", operatorID.String()).
		Msg("hedera client initialized")

	return &Client{
		sdk:         sdk,
		operatorID:  operatorID,
		operatorKey: operatorKey,
		network:     network,
		log:         log,
	}, nil
}

// OperatorAccount returns the signing identity's account id.
func (c *Client) OperatorAccount() string {
	return c.operatorID.String()
}

// Close releases the underlying network channels.
func (c *Client) Close() error {
	return c.sdk.Close()
}

// Submit drives one sub-operation through build, freeze, sign, submit and
// confirm. Failures come back as *domain.LedgerError tagged with the stage
// reached, with Submitted set once the transaction was handed to the
// network.
func (c *Client) Submit(ctx context.Context, sub domain.SubOperation, prior []domain.Receipt) (*domain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageBuild, Err: err}
	}

	start := time.Now()
	var rcpt *domain.Receipt
	var err error

	switch op := sub.(type) {
	case domain.FileCreate:
		rcpt, err = c.submitFileCreate(op)
	case domain.ContractCreate:
		rcpt, err = c.submitContractCreate(op, prior)
	case domain.TokenCreate:
		rcpt, err = c.submitTokenCreate(op)
	case domain.TokenTransfer:
		rcpt, err = c.submitTokenTransfer(op)
	case domain.TokenMint:
		rcpt, err = c.submitTokenMint(op)
	default:
		return nil, &domain.LedgerError{
			Stage: domain.StageBuild,
			Err:   fmt.Errorf("unsupported sub-operation %T", sub),
		}
	}

	if err != nil {
		return nil, err
	}

	c.log.Info().
		Str("sub_op", string(sub.SubOpKind())).
		Str("transaction_id", rcpt.TransactionID).
		Dur("elapsed", time.Since(start)).
		Msg("transaction confirmed")

	return rcpt, nil
}

func (c *Client) submitFileCreate(op domain.FileCreate) (*domain.Receipt, error) {
	frozen, err := hiero.NewFileCreateTransaction().
		SetKeys(c.operatorKey.PublicKey()).
		SetContents(op.Contents).
		SetMaxTransactionFee(hiero.NewHbar(fileCreateFee)).
		FreezeWith(c.sdk)
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageFreeze, Err: err}
	}

	resp, err := frozen.Sign(c.operatorKey).Execute(c.sdk)
	if err != nil {
		return nil, c.classifySubmitError(err)
	}

	receipt, lerr := c.confirm(resp)
	if lerr != nil {
		return nil, lerr
	}

	rcpt := &domain.Receipt{
		SubOp:         domain.SubOpFileCreate,
		TransactionID: resp.TransactionID.String(),
		Status:        receipt.Status.String(),
	}
	if receipt.FileID != nil {
		rcpt.FileID = receipt.FileID.String()
	}
	return rcpt, nil
}

func (c *Client) submitContractCreate(op domain.ContractCreate, prior []domain.Receipt) (*domain.Receipt, error) {
	fileIDStr := op.FileID
	if fileIDStr == "" {
		// Resolve the bytecode file from the preceding step.
		for _, p := range prior {
			if p.SubOp == domain.SubOpFileCreate {
				fileIDStr = p.FileID
			}
		}
	}
	fileID, err := hiero.FileIDFromString(fileIDStr)
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageBuild, Err: fmt.Errorf("bytecode file id: %w", err)}
	}

	tx := hiero.NewContractCreateTransaction().
		SetBytecodeFileID(fileID).
		SetGas(op.Gas).
		SetMaxTransactionFee(hiero.NewHbar(contractCreateFee))
	if op.ConstructorParams != "" {
		tx.SetConstructorParameters(hiero.NewContractFunctionParameters())
	}

	frozen, err := tx.FreezeWith(c.sdk)
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageFreeze, Err: err}
	}

	resp, err := frozen.Sign(c.operatorKey).Execute(c.sdk)
	if err != nil {
		return nil, c.classifySubmitError(err)
	}

	receipt, lerr := c.confirm(resp)
	if lerr != nil {
		return nil, lerr
	}

	rcpt := &domain.Receipt{
		SubOp:         domain.SubOpContractCreate,
		TransactionID: resp.TransactionID.String(),
		Status:        receipt.Status.String(),
	}
	if receipt.ContractID != nil {
		rcpt.ContractID = receipt.ContractID.String()
		rcpt.ContractAddress = receipt.ContractID.ToSolidityAddress()
	}
	return rcpt, nil
}

func (c *Client) submitTokenCreate(op domain.TokenCreate) (*domain.Receipt, error) {
	// Each class gets its own supply key so mint authority can be granted
	// and stored per class instead of reusing the operator key.
	supplyKey, err := hiero.PrivateKeyGenerateEd25519()
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageBuild, Err: fmt.Errorf("generating supply key: %w", err)}
	}

	tx := hiero.NewTokenCreateTransaction().
		SetTokenName(op.Name).
		SetTokenSymbol(op.Symbol).
		SetTreasuryAccountID(c.operatorID).
		SetSupplyKey(supplyKey.PublicKey()).
		SetMaxTransactionFee(hiero.NewHbar(tokenCreateFee))

	if op.Kind == domain.AssetKindNFT {
		tx.SetTokenType(hiero.TokenTypeNonFungibleUnique).
			SetDecimals(0).
			SetInitialSupply(0).
			SetSupplyType(hiero.TokenSupplyTypeFinite).
			SetMaxSupply(op.MaxSupply)
	} else {
		scale := uint64(1)
		for i := uint32(0); i < op.Decimals; i++ {
			scale *= 10
		}
		tx.SetTokenType(hiero.TokenTypeFungibleCommon).
			SetDecimals(uint(op.Decimals)).
			SetInitialSupply(op.InitialSupply * scale).
			SetSupplyType(hiero.TokenSupplyTypeInfinite)
	}

	frozen, err := tx.FreezeWith(c.sdk)
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageFreeze, Err: err}
	}

	resp, err := frozen.Sign(c.operatorKey).Execute(c.sdk)
	if err != nil {
		return nil, c.classifySubmitError(err)
	}

	receipt, lerr := c.confirm(resp)
	if lerr != nil {
		return nil, lerr
	}

	rcpt := &domain.Receipt{
		SubOp:         domain.SubOpTokenCreate,
		TransactionID: resp.TransactionID.String(),
		Status:        receipt.Status.String(),
		SupplyKey:     supplyKey.String(),
	}
	if receipt.TokenID != nil {
		rcpt.TokenID = receipt.TokenID.String()
	}
	return rcpt, nil
}

func (c *Client) submitTokenTransfer(op domain.TokenTransfer) (*domain.Receipt, error) {
	tokenID, err := hiero.TokenIDFromString(op.TokenID)
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageBuild, Err: fmt.Errorf("token id: %w", err)}
	}
	toAccount, err := hiero.AccountIDFromString(op.ToAccount)
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageBuild, Err: fmt.Errorf("destination account: %w", err)}
	}

	frozen, err := hiero.NewTransferTransaction().
		AddTokenTransfer(tokenID, c.operatorID, -op.Amount).
		AddTokenTransfer(tokenID, toAccount, op.Amount).
		SetMaxTransactionFee(hiero.NewHbar(transferFee)).
		FreezeWith(c.sdk)
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageFreeze, Err: err}
	}

	resp, err := frozen.Sign(c.operatorKey).Execute(c.sdk)
	if err != nil {
		return nil, c.classifySubmitError(err)
	}

	receipt, lerr := c.confirm(resp)
	if lerr != nil {
		return nil, lerr
	}

	return &domain.Receipt{
		SubOp:         domain.SubOpTokenTransfer,
		TransactionID: resp.TransactionID.String(),
		Status:        receipt.Status.String(),
		TokenID:       op.TokenID,
	}, nil
}

func (c *Client) submitTokenMint(op domain.TokenMint) (*domain.Receipt, error) {
	tokenID, err := hiero.TokenIDFromString(op.TokenID)
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageBuild, Err: fmt.Errorf("token id: %w", err)}
	}

	// Minting is signed with the class supply key, not the operator key.
	supplyKey, err := hiero.PrivateKeyFromString(op.SupplyKey)
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageSign, Err: fmt.Errorf("supply key: %w", err)}
	}

	frozen, err := hiero.NewTokenMintTransaction().
		SetTokenID(tokenID).
		SetMetadata(op.Metadata).
		SetMaxTransactionFee(hiero.NewHbar(tokenMintFee)).
		FreezeWith(c.sdk)
	if err != nil {
		return nil, &domain.LedgerError{Stage: domain.StageFreeze, Err: err}
	}

	resp, err := frozen.Sign(supplyKey).Execute(c.sdk)
	if err != nil {
		return nil, c.classifySubmitError(err)
	}

	receipt, lerr := c.confirm(resp)
	if lerr != nil {
		return nil, lerr
	}

	return &domain.Receipt{
		SubOp:         domain.SubOpTokenMint,
		TransactionID: resp.TransactionID.String(),
		Status:        receipt.Status.String(),
		TokenID:       op.TokenID,
		SerialNumbers: receipt.SerialNumbers,
	}, nil
}

// Balance queries the operator account balance.
func (c *Client) Balance(ctx context.Context) (*ports.BalanceSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	balance, err := hiero.NewAccountBalanceQuery().
		SetAccountID(c.operatorID).
		Execute(c.sdk)
	if err != nil {
		return nil, fmt.Errorf("account balance query: %w", err)
	}

	return &ports.BalanceSnapshot{
		AccountID:   c.operatorID.String(),
		Hbars:       balance.Hbars.String(),
		Network:     c.network,
		RetrievedAt: time.Now().UTC(),
	}, nil
}

// confirm waits for the receipt of a submitted transaction. Any failure
// here is indeterminate: the network has the transaction and may still
// apply it.
func (c *Client) confirm(resp hiero.TransactionResponse) (hiero.TransactionReceipt, *domain.LedgerError) {
	receipt, err := resp.GetReceipt(c.sdk)
	if err != nil {
		return receipt, &domain.LedgerError{
			Stage:         domain.StageConfirm,
			TransactionID: resp.TransactionID.String(),
			Submitted:     true,
			Err:           err,
		}
	}
	return receipt, nil
}

// classifySubmitError separates precheck rejections, where the network
// never accepted the transaction, from transport failures where it may
// have. Only the former are safe to blindly retry.
func (c *Client) classifySubmitError(err error) *domain.LedgerError {
	le := &domain.LedgerError{Stage: domain.StageSubmit, Err: err}

	var precheck hiero.ErrHederaPreCheckStatus
	if errors.As(err, &precheck) {
		le.TransactionID = precheck.TxID.String()
		return le
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "deadline") ||
		strings.Contains(err.Error(), "timeout") {
		le.Submitted = true
	}
	return le
}
