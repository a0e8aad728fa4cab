package state

import (
	"bytes"

	bin "github.com/gagliardetto/binary"

	"github.com/lugondev/go-ammcore/internal/errors"
	"github.com/lugondev/go-ammcore/pkg/types"
)

// ConfigSeed is the namespace tag the global config record's address is
// derived from.
const ConfigSeed = "amm_config_account_seed"

// AmmConfig is the deployment-wide config record: who may withdraw skimmed
// PnL, who may cancel orders on any pool, and the pool creation fee.
type AmmConfig struct {
	PnlOwner      types.Pubkey `json:"pnl_owner"`
	CancelOwner   types.Pubkey `json:"cancel_owner"`
	Pending1      [28]uint64   `json:"-"`
	Pending2      [31]uint64   `json:"-"`
	CreatePoolFee uint64       `json:"create_pool_fee"`
}

// UpdateParam selects an AmmConfig field for update.
type UpdateParam uint8

const (
	ConfigParamPnlOwner UpdateParam = iota
	ConfigParamCancelOwner
	ConfigParamCreatePoolFee
)

// Update applies one field change.
func (c *AmmConfig) Update(param UpdateParam, value uint64, newOwner *types.Pubkey) error {
	switch param {
	case ConfigParamPnlOwner:
		if newOwner == nil || *newOwner == types.ZeroPubkey {
			return errors.ErrInvalidInput
		}
		c.PnlOwner = *newOwner
	case ConfigParamCancelOwner:
		if newOwner == nil || *newOwner == types.ZeroPubkey {
			return errors.ErrInvalidInput
		}
		c.CancelOwner = *newOwner
	case ConfigParamCreatePoolFee:
		c.CreatePoolFee = value
	default:
		return errors.ErrInvalidParamsSet.WithDetails(map[string]any{
			"param": uint8(param),
		})
	}
	return nil
}

// Marshal encodes the record in its fixed layout.
func (c *AmmConfig) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(c); err != nil {
		return nil, errors.ErrInvalidInput.WithCause(err)
	}
	return buf.Bytes(), nil
}

// DecodeAmmConfig decodes a record from its fixed layout.
func DecodeAmmConfig(data []byte) (*AmmConfig, error) {
	c := new(AmmConfig)
	if err := bin.NewBorshDecoder(data).Decode(c); err != nil {
		return nil, errors.ErrExpectedAccount.WithCause(err)
	}
	return c, nil
}
