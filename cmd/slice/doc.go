// Command slice is the SliceMaster storefront client.
//
// Typical session:
//
//	slice mock-server &          # local backend with a seeded menu
//	slice login demo@slicemaster.dev
//	slice menu
//	slice cart add P-1 -q 2
//	slice cart add P-2
//	slice checkout --payment COD --watch
//	slice orders
//
// The cart survives restarts and works signed out; signing in merges it with
// the server-side cart. `slice orders` falls back to the local cache when the
// backend is unreachable.
//
// Configuration comes from .env / config/app.json: API_BASE_URL, WS_URL,
// STATE_DRIVER (file, redis or memory), DELIVERY_FEE, and friends.
package main
