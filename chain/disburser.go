package chain

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
)

const transferGasLimit = 21000

// WriterClient is the subset of the PIO chain RPC the disburser uses.
type WriterClient interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Disburser signs and broadcasts native PIO transfers from the custodial
// account.
type Disburser struct {
	client  WriterClient
	chainId *big.Int
}

func NewDisburser(client WriterClient, chainId int64) *Disburser {
	return &Disburser{
		client:  client,
		chainId: big.NewInt(chainId),
	}
}

func DialWriter(rpc string) (*ethclient.Client, error) {
	return ethclient.Dial(rpc)
}

// SendNative transfers amount (human units, 18 decimals) to recipient and
// returns the broadcast transaction hash.
func (d *Disburser) SendNative(ctx context.Context, privateKeyHex, recipient string, amount float64) (string, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return "", disbursementErrorf("invalid custodial key: %s", err.Error())
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := d.client.PendingNonceAt(ctx, from)
	if err != nil {
		return "", disbursementErrorf("fetch nonce: %s", err.Error())
	}

	gasPrice, err := d.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", disbursementErrorf("fetch gas price: %s", err.Error())
	}

	tx := types.NewTransaction(nonce, common.HexToAddress(recipient), floatToWei(amount), transferGasLimit, gasPrice, nil)
	signed, err := types.SignTx(tx, types.NewEIP155Signer(d.chainId), key)
	if err != nil {
		return "", disbursementErrorf("sign transaction: %s", err.Error())
	}

	if err := d.client.SendTransaction(ctx, signed); err != nil {
		return "", disbursementErrorf("broadcast: %s", err.Error())
	}

	log.Info("disburser", "sent", signed.Hash().Hex(), "to", recipient, "amount", amount)
	return signed.Hash().Hex(), nil
}

func floatToWei(amount float64) *big.Int {
	f := new(big.Float).SetFloat64(amount)
	f.Mul(f, big.NewFloat(1e18))
	wei, _ := f.Int(nil)
	return wei
}
