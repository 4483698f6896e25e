package world

// ReturnValue is the closed result taxonomy for every cylinder query and
// engine operation. Game-rule failures are values, never Go errors.
type ReturnValue int

const (
	RetNoError ReturnValue = iota
	RetNotPossible
	RetNotEnoughRoom
	RetNotEnoughCapacity
	RetContainerNotEnoughRoom
	RetNeedExchange
	RetNotMoveable
	RetCannotBeDressed
	RetPutThisObjectInYourHand
	RetPutThisObjectInBothHands
	RetBothHandsNeedToBeFree
	RetDropTwoHandedItem
	RetCanOnlyUseOneWeapon
	RetCanOnlyUseOneShield
	RetTooFarAway
	RetFirstGoDownstairs
	RetFirstGoUpstairs
	RetCannotThrow
	RetThereIsNoWay
	RetDestinationOutOfReach
	RetPlayerIsNotInvited
	RetDepotIsFull
	RetThisIsImpossible
	RetItemCannotBeMoved
	RetNotEnoughMagicLevel
	RetNotEnoughLevel
	RetYouNeedPremiumAccount
	RetYouNeedAWeaponToUseThisSpell
	RetRecursionLimit
)

var returnValueMessages = map[ReturnValue]string{
	RetNoError:                      "",
	RetNotPossible:                  "Sorry, not possible.",
	RetNotEnoughRoom:                "There is not enough room.",
	RetNotEnoughCapacity:            "This object is too heavy for you to carry.",
	RetContainerNotEnoughRoom:       "You cannot put more objects in this container.",
	RetNeedExchange:                 "You need to exchange this object first.",
	RetNotMoveable:                  "You cannot move this object.",
	RetCannotBeDressed:              "You cannot dress this object there.",
	RetPutThisObjectInYourHand:      "Put this object in your hand.",
	RetPutThisObjectInBothHands:     "Put this object in both hands.",
	RetBothHandsNeedToBeFree:        "Both hands need to be free.",
	RetDropTwoHandedItem:            "Drop the double-handed object first.",
	RetCanOnlyUseOneWeapon:          "You may only use one weapon.",
	RetCanOnlyUseOneShield:          "You may use only one shield.",
	RetTooFarAway:                   "You are too far away.",
	RetFirstGoDownstairs:            "First go downstairs.",
	RetFirstGoUpstairs:              "First go upstairs.",
	RetCannotThrow:                  "You cannot throw there.",
	RetThereIsNoWay:                 "There is no way.",
	RetDestinationOutOfReach:        "Destination is out of reach.",
	RetPlayerIsNotInvited:           "You are not invited.",
	RetDepotIsFull:                  "You cannot put more items in this depot.",
	RetThisIsImpossible:             "This is impossible.",
	RetItemCannotBeMoved:            "This item cannot be moved.",
	RetNotEnoughMagicLevel:          "You do not have enough magic level.",
	RetNotEnoughLevel:               "You do not have enough level.",
	RetYouNeedPremiumAccount:        "You need a premium account.",
	RetYouNeedAWeaponToUseThisSpell: "You need to equip a weapon to use this spell.",
	RetRecursionLimit:               "Sorry, not possible.",
}

// Message returns the client-facing cancel message for a ReturnValue.
func (rv ReturnValue) Message() string {
	if msg, ok := returnValueMessages[rv]; ok {
		return msg
	}
	return returnValueMessages[RetNotPossible]
}

// OK reports whether rv is RetNoError.
func (rv ReturnValue) OK() bool { return rv == RetNoError }

// CylinderFlags modify legality checks during cylinder queries.
type CylinderFlags uint32

const (
	// FlagNoLimit bypasses capacity and count caps (system-initiated moves
	// such as mail delivery that must succeed).
	FlagNoLimit CylinderFlags = 1 << iota
	// FlagIgnoreBlockItem permits placement over solid items.
	FlagIgnoreBlockItem
	// FlagIgnoreBlockCreature permits placement over blocking creatures.
	FlagIgnoreBlockCreature
	// FlagChildIsOwner marks a child cylinder query made on behalf of its
	// owner (container-in-own-inventory moves skip the weight check).
	FlagChildIsOwner
	// FlagPathfinding marks legality checks made by the path search.
	FlagPathfinding
	// FlagIgnoreFieldDamage permits walking into harmful fields.
	FlagIgnoreFieldDamage
)

// Has reports whether all bits in f are set.
func (c CylinderFlags) Has(f CylinderFlags) bool { return c&f == f }
