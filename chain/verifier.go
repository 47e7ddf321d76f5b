package chain

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
)

// transfer(address,uint256) selector.
var transferSelector = [4]byte{0xa9, 0x05, 0x9c, 0xbb}

// ReaderClient is the subset of the BSC RPC the verifier uses.
type ReaderClient interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// TransferDetails is the decoded result of a verified USDT transfer.
type TransferDetails struct {
	Amount float64
	From   string
	To     string
}

// Verifier confirms claimed USDT payments against the payment chain. The
// check runs on live chain data at verification time; nothing the client
// submitted is trusted.
type Verifier struct {
	client       ReaderClient
	usdtContract common.Address
	signer       types.Signer
	tolerance    float64
}

func NewVerifier(client ReaderClient, usdtContract string, chainId int64, tolerance float64) *Verifier {
	return &Verifier{
		client:       client,
		usdtContract: common.HexToAddress(usdtContract),
		signer:       types.LatestSignerForChainID(big.NewInt(chainId)),
		tolerance:    tolerance,
	}
}

func DialReader(rpc string) (*ethclient.Client, error) {
	return ethclient.Dial(rpc)
}

// VerifyUsdtTransfer checks that txHash is a successful USDT transfer of at
// least tolerance*expectedAmount to expectedRecipient. The call data after
// the 4-byte selector is two 32-byte big-endian fields: the recipient address
// in the low 20 bytes of the first, the raw 18-decimal amount in the second.
func (v *Verifier) VerifyUsdtTransfer(ctx context.Context, txHash string, expectedAmount float64, expectedRecipient string) (*TransferDetails, error) {
	hash := common.HexToHash(txHash)

	tx, _, err := v.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, verificationErrorf("fetch transaction %s: %s", txHash, err.Error())
	}

	receipt, err := v.client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, verificationErrorf("fetch receipt %s: %s", txHash, err.Error())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, verificationErrorf("transaction failed")
	}

	if tx.To() == nil || *tx.To() != v.usdtContract {
		return nil, verificationErrorf("not a USDT transaction")
	}

	data := tx.Data()
	if len(data) < 68 {
		return nil, verificationErrorf("could not decode transaction, input length: %d", len(data))
	}
	if data[0] != transferSelector[0] || data[1] != transferSelector[1] ||
		data[2] != transferSelector[2] || data[3] != transferSelector[3] {
		return nil, verificationErrorf("not a transfer call")
	}

	recipient := common.BytesToAddress(data[4:36])
	amountWei := new(big.Int).SetBytes(data[36:68])
	amount := weiToFloat(amountWei)

	log.Info("verifier", "tx decoded", txHash, "recipient", recipient.Hex(), "amount", amount)

	if !strings.EqualFold(recipient.Hex(), expectedRecipient) {
		return nil, verificationErrorf("wrong recipient: expected %s, got %s", expectedRecipient, recipient.Hex())
	}

	if amount < expectedAmount*v.tolerance {
		return nil, verificationErrorf("amount mismatch: expected %v, got %v", expectedAmount, amount)
	}

	details := &TransferDetails{
		Amount: amount,
		To:     recipient.Hex(),
	}
	// Sender recovery is informational; the payment record already carries
	// the submitting wallet.
	if from, err := types.Sender(v.signer, tx); err == nil {
		details.From = from.Hex()
	}
	return details, nil
}

func weiToFloat(wei *big.Int) float64 {
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(1e18))
	v, _ := f.Float64()
	return v
}
