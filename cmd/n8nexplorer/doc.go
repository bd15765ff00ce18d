// Command n8nexplorer browses the workflows of an n8n instance grouped into
// folders by tag.
//
// sync fetches the workflow list and prints the folder tree; tree renders the
// last successful sync without touching the network. Credentials come from
// `n8nexplorer login`, the config file or N8N_API_URL / N8N_API_KEY. serve
// exposes the same tree over a local HTTP API.
package main
