package engine

import (
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
)

// ConfigSnapshot is an opaque copy of a container's Config (image
// reference, env, cmd, entrypoint, working dir, labels, exposed ports,
// volumes, user, tty/stdin flags, hostname, domain, stop signal,
// healthcheck spec, ...). The replacement engine's only obligation on a
// ConfigSnapshot is to replace Image; every other field is carried
// through untouched by CloneForNewImage.
type ConfigSnapshot struct {
	inner *container.Config
}

// NewConfigSnapshot wraps a container.Config produced by an inspect call.
func NewConfigSnapshot(c *container.Config) ConfigSnapshot {
	return ConfigSnapshot{inner: c}
}

// Native returns the underlying container.Config for engine calls that
// need it verbatim.
func (s ConfigSnapshot) Native() *container.Config {
	return s.inner
}

// Image returns the image reference recorded in the snapshot.
func (s ConfigSnapshot) Image() string {
	if s.inner == nil {
		return ""
	}
	return s.inner.Image
}

// HasHealthcheck reports whether a non-empty healthcheck test vector is
// defined, the trigger the health-gate state machine uses to decide
// between checking Docker's own health status and its own grace-period
// fallback.
func (s ConfigSnapshot) HasHealthcheck() bool {
	return s.inner != nil && s.inner.Healthcheck != nil && len(s.inner.Healthcheck.Test) > 0
}

// CloneForNewImage returns a deep copy of s with Image replaced by
// newImageReference. Every other field — env, cmd, entrypoint, working
// dir, labels, exposed ports, volumes, user, tty/stdin, hostname, domain,
// stop signal, healthcheck — is copied verbatim.
func (s ConfigSnapshot) CloneForNewImage(newImageReference string) ConfigSnapshot {
	clone := *s.inner
	clone.Image = newImageReference
	clone.Env = append(s.inner.Env[:0:0], s.inner.Env...)
	clone.Cmd = append(s.inner.Cmd[:0:0], s.inner.Cmd...)
	clone.Entrypoint = append(s.inner.Entrypoint[:0:0], s.inner.Entrypoint...)
	clone.Labels = cloneMap(s.inner.Labels)
	clone.Volumes = cloneMap(s.inner.Volumes)
	clone.ExposedPorts = cloneMap(s.inner.ExposedPorts)
	if s.inner.Healthcheck != nil {
		hc := *s.inner.Healthcheck
		hc.Test = append(s.inner.Healthcheck.Test[:0:0], s.inner.Healthcheck.Test...)
		clone.Healthcheck = &hc
	}
	return ConfigSnapshot{inner: &clone}
}

// HostConfigSnapshot is an opaque copy of a container's HostConfig: port
// bindings, binds, mounts, links, resource limits, cgroup parent,
// capabilities, dns, restart policy, network mode, runtime, security
// options, and everything else Docker's HostConfig carries.
type HostConfigSnapshot struct {
	inner *container.HostConfig
}

// NewHostConfigSnapshot wraps a container.HostConfig produced by an
// inspect call.
func NewHostConfigSnapshot(hc *container.HostConfig) HostConfigSnapshot {
	return HostConfigSnapshot{inner: hc}
}

// Native returns the underlying container.HostConfig.
func (s HostConfigSnapshot) Native() *container.HostConfig {
	return s.inner
}

// CloneStagingHostConfig returns a deep copy of s with PortBindings set
// to nil and PublishAllPorts set to false. Every other field — Binds,
// Mounts, Links, Resources (CPU/memory limits), CgroupParent, CapAdd,
// CapDrop, DNS, DNSSearch, DNSOptions, ExtraHosts, RestartPolicy,
// NetworkMode, Runtime, SecurityOpt, and the rest — is preserved
// verbatim, matching the contract that a staging container must never
// publish the original's ports while it is being health-probed.
func (s HostConfigSnapshot) CloneStagingHostConfig() HostConfigSnapshot {
	clone := *s.inner
	clone.PortBindings = nil
	clone.PublishAllPorts = false
	clone.Binds = append(s.inner.Binds[:0:0], s.inner.Binds...)
	clone.Mounts = append(s.inner.Mounts[:0:0], s.inner.Mounts...)
	clone.Links = append(s.inner.Links[:0:0], s.inner.Links...)
	clone.CapAdd = append(s.inner.CapAdd[:0:0], s.inner.CapAdd...)
	clone.CapDrop = append(s.inner.CapDrop[:0:0], s.inner.CapDrop...)
	clone.DNS = append(s.inner.DNS[:0:0], s.inner.DNS...)
	clone.DNSSearch = append(s.inner.DNSSearch[:0:0], s.inner.DNSSearch...)
	clone.DNSOptions = append(s.inner.DNSOptions[:0:0], s.inner.DNSOptions...)
	clone.ExtraHosts = append(s.inner.ExtraHosts[:0:0], s.inner.ExtraHosts...)
	clone.SecurityOpt = append(s.inner.SecurityOpt[:0:0], s.inner.SecurityOpt...)
	clone.GroupAdd = append(s.inner.GroupAdd[:0:0], s.inner.GroupAdd...)
	clone.StorageOpt = cloneMap(s.inner.StorageOpt)
	clone.Tmpfs = cloneMap(s.inner.Tmpfs)
	clone.Sysctls = cloneMap(s.inner.Sysctls)
	return HostConfigSnapshot{inner: &clone}
}

// CloneOriginalHostConfig returns a copy of s's top-level HostConfig struct
// unmodified, used when recreating the final container with its original
// port bindings intact. Slices and maps inside it are shared with s.
func (s HostConfigSnapshot) CloneOriginalHostConfig() HostConfigSnapshot {
	clone := *s.inner
	return HostConfigSnapshot{inner: &clone}
}

// NetworkingSnapshot is an opaque copy of a container's per-network
// endpoint settings: aliases, network id, driver options, links, and IPAM
// config, keyed by network name.
type NetworkingSnapshot struct {
	inner *network.NetworkingConfig
}

// NewNetworkingSnapshot wraps a network.NetworkingConfig produced by an
// inspect call.
func NewNetworkingSnapshot(nc *network.NetworkingConfig) NetworkingSnapshot {
	return NetworkingSnapshot{inner: nc}
}

// Native returns the underlying network.NetworkingConfig.
func (s NetworkingSnapshot) Native() *network.NetworkingConfig {
	return s.inner
}

// CloneWithFreshAddresses returns a deep copy of s with every endpoint's
// assigned addresses (IPv4, IPv6, prefix lengths, MAC) cleared so the
// engine assigns fresh ones on the next create, while keeping aliases,
// network id, driver options, links and IPAM config intact.
func (s NetworkingSnapshot) CloneWithFreshAddresses() NetworkingSnapshot {
	if s.inner == nil {
		return s
	}
	clone := network.NetworkingConfig{
		EndpointsConfig: make(map[string]*network.EndpointSettings, len(s.inner.EndpointsConfig)),
	}
	for name, ep := range s.inner.EndpointsConfig {
		epClone := *ep
		epClone.IPAddress = ""
		epClone.GlobalIPv6Address = ""
		epClone.IPPrefixLen = 0
		epClone.GlobalIPv6PrefixLen = 0
		epClone.MacAddress = ""
		epClone.Aliases = append(ep.Aliases[:0:0], ep.Aliases...)
		epClone.Links = append(ep.Links[:0:0], ep.Links...)
		if ep.IPAMConfig != nil {
			ipam := *ep.IPAMConfig
			epClone.IPAMConfig = &ipam
		}
		clone.EndpointsConfig[name] = &epClone
	}
	return NetworkingSnapshot{inner: &clone}
}

// cloneMap returns a shallow copy of m, preserving m's declared map type
// through Go's map-literal type inference so callers never have to name
// the concrete engine SDK type (nat.PortSet, map[string]struct{}, ...).
func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
