// Package firewall programs the kernel-resident nftables set consulted
// by the packet filter. The set is shared with live traffic
// classification and with administrators running nft by hand, so every
// membership change is staged into a single netlink batch (or a single
// nft -f transaction on the script path) and committed atomically: an
// external reader sees either the full old membership or the full new
// membership, never an empty or partial set.
package firewall
