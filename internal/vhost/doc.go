// Package vhost resolves content paths against virtual hosting rewrites.
//
// Reverse proxies encode the public site root in the request path using the
// VirtualHostBase / VirtualHostRoot convention:
//
//	/VirtualHostBase/https/www.example.org:443/plone/VirtualHostRoot/_vh_news/foo
//
// Traverse parses such a path into a Request; PathToVirtualPath uses it to
// compute item paths relative to the effective site root.
package vhost
