package net

import (
	"fmt"
	"log"
	"net"
	"strings"
)

// Scheme prefixes share links handed to viewers.
const Scheme = "playboard://"

// OutgoingIP finds the address other machines on the LAN can reach us at.
func OutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return localIPFallback()
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// localIPFallback is used on networks without internet access.
func localIPFallback() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		log.Printf("[HOST] Listing interfaces: %v", err)
		return "127.0.0.1"
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String()
		}
	}
	log.Println("[HOST] No suitable local IP found, share link may not work")
	return "127.0.0.1"
}

// ShareLink builds the link a viewer opens to follow this host.
func ShareLink(ip string, port int) string {
	return fmt.Sprintf("%s%s", Scheme, net.JoinHostPort(ip, fmt.Sprint(port)))
}

// ParseLink extracts host:port from a share link.
func ParseLink(link string) (string, error) {
	if !strings.HasPrefix(link, Scheme) {
		return "", fmt.Errorf("net: %q is not a %s link", link, Scheme)
	}
	addr := strings.TrimSuffix(strings.TrimPrefix(link, Scheme), "/")
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return "", fmt.Errorf("net: parse link: %w", err)
	}
	return addr, nil
}
