// Package rawsctp adapts a kernel-provided, one-to-one mode SCTP socket on
// Linux into the small surface the sctp channel state machine consumes:
// open/bind/connect/receive/send/options/addresses/close. It is grounded
// on the Linux SCTP socket extensions (RFC 6458) and golang.org/x/sys/unix.
package rawsctp

import "golang.org/x/sys/unix"

// Socket-level option namespace and message flags.
const (
	solSCTP = 132

	sctpBindxAddAddr = 0x01
	sctpBindxRemAddr = 0x02

	msgNotification = 0x8000
)

// SCTP_xxx sockopt names, as exposed by linux/sctp.h.
const (
	sctpRtoinfo = iota
	sctpAssocinfo
	sctpInitmsg
	sctpNodelay
	sctpAutoclose
	sctpSetPeerPrimaryAddr
	sctpPrimaryAddr
	sctpAdaptationLayer
	sctpDisableFragments
	sctpPeerAddrParams
	sctpDefaultSentParam
	sctpEvents
	sctpIWantMappedV4Addr
	sctpMaxseg
	sctpStatus
	sctpGetPeerAddrInfo
	sctpDelayedAckTime

	sctpSockoptBindxAdd = 100
	sctpSockoptBindxRem = 101
	sctpSockoptPeeloff  = 102
	sctpGetPeerAddrs    = 108
	sctpGetLocalAddrs   = 109
)

// NotificationType tags (sn_type) as delivered in sctp_notification.
// Exported so callers outside this package can switch on
// Notification.Type without redeclaring the kernel's numbering.
type notificationType = NotificationType

type NotificationType uint16

const (
	snTypeBase = NotificationType(1 << 15)

	NotifyAssocChange       = snTypeBase + 1
	NotifyPeerAddrChange    = snTypeBase + 2
	NotifySendFailed        = snTypeBase + 3
	NotifyRemoteError       = snTypeBase + 4
	NotifyShutdownEvent     = snTypeBase + 5
	NotifyPartialDelivery   = snTypeBase + 6
	NotifyAdaptationInd     = snTypeBase + 7
	NotifyAuthenticationInd = snTypeBase + 8
	NotifySenderDryEvent    = snTypeBase + 9

	snAssocChange       = NotifyAssocChange
	snPeerAddrChange    = NotifyPeerAddrChange
	snSendFailed        = NotifySendFailed
	snRemoteError       = NotifyRemoteError
	snShutdownEvent     = NotifyShutdownEvent
	snPartialDelivery   = NotifyPartialDelivery
	snAdaptationInd     = NotifyAdaptationInd
	snAuthenticationInd = NotifyAuthenticationInd
	snSenderDryEvent    = NotifySenderDryEvent
)

// cmsgType tags the ancillary data Recvmsg/Sendmsg exchange alongside
// message payloads.
type cmsgType int32

const (
	cmsgInit cmsgType = iota
	cmsgSndrcv
	cmsgSndinfo
	cmsgRcvinfo
	cmsgNxtinfo
)

// Per-message send/receive flags (sinfo_flags / rcv_flags).
const (
	flagUnordered = 1 << iota
	flagAddrOver
	flagAbort
	flagSackImmediately
	flagEOF
)

// AssociationState mirrors sctp_sstat / notify.h's sac_state values.
type AssociationState uint16

const (
	CommUp AssociationState = iota
	CommLost
	Restart
	ShutdownComp
	CantStrAssoc
)

// PeerAddressState mirrors spc_state values carried by
// SCTP_PEER_ADDR_CHANGE notifications.
type PeerAddressState uint32

const (
	AddrAvailable PeerAddressState = iota
	AddrUnreachable
	AddrRemoved
	AddrAdded
	AddrMadePrimary
)

func addressFamily(network string) int {
	if network == "ip6" {
		return unix.AF_INET6
	}
	return unix.AF_INET
}
