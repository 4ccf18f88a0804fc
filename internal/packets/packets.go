// Packet structures for the world server protocol. Only the semantic fields
// are defined here; every struct is serialized field-by-field in little
// endian order by the codec in bytes.go.
package packets

// Packet type codes for all client and server messages handled by the world server.
const (
	EnterWorldType = 0x0101

	PlayerMoveType     = 0x0501
	CharacterMovedType = 0x0502

	PoolUpdateType    = 0x0601
	CharacterDeadType = 0x0602
	GoldUpdateType    = 0x0603
	MaxPoolUpdateType = 0x0604

	PartyRequestType      = 0x0A01
	PartyResponseType     = 0x0A02
	PartyLeaveType        = 0x0A03
	PartyKickType         = 0x0A04
	PartyChangeLeaderType = 0x0A05
	PartyInfoType         = 0x0A06
	PartyDeclinedType     = 0x0A07

	TradeRequestType        = 0x0B01
	TradeResponseType       = 0x0B02
	TradeStartType          = 0x0B03
	TradeAddItemType        = 0x0B04
	TradeOwnerAddItemType   = 0x0B05
	TradePartnerAddItemType = 0x0B06
	TradeAddMoneyType       = 0x0B07
	TradeMoneyUpdateType    = 0x0B08
	TradeDecideType         = 0x0B09
	TradeDecideUpdateType   = 0x0B0A
	TradeFinishType         = 0x0B0B
	TradeConfirmUpdateType  = 0x0B0C
	TradeStopType           = 0x0B0D
)

// Results a client can send in a TradeFinish packet.
const (
	TradeResultConfirm         = 0
	TradeResultConfirmDeclined = 1
	TradeResultCancel          = 2
)

const HeaderSize = 0x04

// Header precedes every packet in both directions.
type Header struct {
	Size uint16
	Type uint16
}

//
// Client -> server packets.
//

// EnterWorld is sent once after the connection is established to bind the
// connection to a character.
type EnterWorld struct {
	Header
	CharacterID uint32
}

type PlayerMove struct {
	Header
	X     float32
	Y     float32
	Z     float32
	Angle uint16
	// Nonzero when the client expects the position to be durably saved.
	Save    uint8
	Padding uint8
}

type PartyRequest struct {
	Header
	TargetID uint32
}

type PartyResponse struct {
	Header
	Declined uint8
	Padding  [3]uint8
}

type PartyLeave struct {
	Header
}

type PartyKick struct {
	Header
	TargetID uint32
}

type PartyChangeLeader struct {
	Header
	TargetID uint32
}

type TradeRequest struct {
	Header
	TargetID uint32
}

type TradeResponse struct {
	Header
	Declined uint8
	Padding  [3]uint8
}

type TradeAddItem struct {
	Header
	Bag       uint8
	Slot      uint8
	Quantity  uint8
	TradeSlot uint8
}

type TradeAddMoney struct {
	Header
	Amount uint32
}

type TradeDecide struct {
	Header
	Decided uint8
	Padding [3]uint8
}

type TradeFinish struct {
	Header
	Result  uint8
	Padding [3]uint8
}

//
// Server -> client packets.
//

// PartyMember is one entry in a PartyInfo member list.
type PartyMember struct {
	ID    uint32
	Level uint16
	Name  [21]byte
}

// PartyInfo carries the full party composition to one member. The member
// list excludes the recipient; LeaderIndex is the leader's position in the
// complete member list.
type PartyInfo struct {
	Header
	LeaderIndex uint8
	MemberCount uint8
	Members     []PartyMember
}

// PartyRequestNotify tells a player another character invited them to a party.
type PartyRequestNotify struct {
	Header
	RequesterID uint32
}

// PartyDeclined tells the inviter their invitation was declined.
type PartyDeclined struct {
	Header
	CharacterID uint32
}

// TradeRequestNotify tells a player another character wants to trade.
type TradeRequestNotify struct {
	Header
	RequesterID uint32
}

// TradeStart tells both participants the trade window is open.
type TradeStart struct {
	Header
	PartnerID uint32
}

// TradeOwnerAddItem echoes a staged item back to the player who staged it.
type TradeOwnerAddItem struct {
	Header
	Bag       uint8
	Slot      uint8
	Quantity  uint8
	TradeSlot uint8
}

// TradePartnerAddItem describes an item the other side staged, with enough
// detail for the client to render it without owning it.
type TradePartnerAddItem struct {
	Header
	TradeSlot uint8
	Quantity  uint8
	ItemType  uint8
	ItemID    uint8
	Quality   uint16
	Padding   [2]uint8
	Gems      [6]uint32
}

// TradeMoneyUpdate reports a staged gold amount. Side is 1 for the
// recipient's own offer and 2 for the partner's.
type TradeMoneyUpdate struct {
	Header
	Side    uint8
	Padding [3]uint8
	Amount  uint32
}

// TradeDecideUpdate reports one side's decided flag. Side semantics match
// TradeMoneyUpdate.
type TradeDecideUpdate struct {
	Header
	Side    uint8
	Decided uint8
	Padding [2]uint8
}

// TradeConfirmUpdate reports one side's confirmation, or the withdrawal of
// both confirmations when Declined is set.
type TradeConfirmUpdate struct {
	Header
	Side     uint8
	Declined uint8
	Padding  [2]uint8
}

// TradeStop closes the trade window. Result 0 means the exchange committed,
// 2 means the trade was cancelled.
type TradeStop struct {
	Header
	Result  uint8
	Padding [3]uint8
}

// Pool identifiers used by PoolUpdate and MaxPoolUpdate.
const (
	PoolHP = iota
	PoolMP
	PoolSP
)

// PoolUpdate reports a change to one of a character's resource pools.
type PoolUpdate struct {
	Header
	CharacterID uint32
	Pool        uint8
	Padding     [3]uint8
	Current     int32
	Max         int32
}

// MaxPoolUpdate reports a change to a pool's maximum.
type MaxPoolUpdate struct {
	Header
	CharacterID uint32
	Pool        uint8
	Padding     [3]uint8
	Max         int32
}

// CharacterDead reports a character's death and the source of the killing blow.
type CharacterDead struct {
	Header
	CharacterID uint32
	KillerID    uint32
}

// GoldUpdate reports a character's new gold balance.
type GoldUpdate struct {
	Header
	CharacterID uint32
	Gold        uint32
}

// CharacterMoved reports a position change.
type CharacterMoved struct {
	Header
	CharacterID uint32
	X           float32
	Y           float32
	Z           float32
	Angle       uint16
	Padding     [2]uint8
}
