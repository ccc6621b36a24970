// Package events carries order notifications to connected kitchen and
// waiter clients over websockets. The gateway is strictly downstream of
// persistence: events reach it only after the triggering write committed,
// and nothing it does (full buffers, absent listeners, dead connections)
// ever surfaces as an error to the operation that published.
package events

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/comandapp/comandas-api/middleware"
	"github.com/comandapp/comandas-api/models"
	"github.com/comandapp/comandas-api/services"
	"github.com/gin-gonic/gin"
)

// Gateway implements services.Dispatcher over one websocket hub per
// channel. Tenants are isolated inside each hub: a client only receives
// events for its own restaurant.
type Gateway struct {
	hubs map[services.Channel]*hub
}

// NewGateway creates a gateway with its three channel hubs. Call Run once
// at startup before serving connections.
func NewGateway() *Gateway {
	return &Gateway{
		hubs: map[services.Channel]*hub{
			services.ChannelKitchen:   newHub(string(services.ChannelKitchen)),
			services.ChannelWaiter:    newHub(string(services.ChannelWaiter)),
			services.ChannelBroadcast: newHub(string(services.ChannelBroadcast)),
		},
	}
}

// Run starts the hub event loops.
func (g *Gateway) Run() {
	for _, h := range g.hubs {
		go h.run()
	}
}

// Publish serializes the event and fans it out to the channel's connected
// listeners for the event's restaurant. Fire-and-forget: failures are
// logged and swallowed.
func (g *Gateway) Publish(channel services.Channel, event services.Event) {
	h, ok := g.hubs[channel]
	if !ok {
		log.Printf("ws: publish on unknown channel %q dropped", channel)
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: failed to marshal event for order %d: %v", event.OrderID, err)
		return
	}
	h.publish(envelope{restaurantID: event.RestaurantID, data: data})
}

// channelRoles gates who may listen where. The broadcast channel is open
// to any authenticated staff member.
var channelRoles = map[services.Channel][]models.Role{
	services.ChannelKitchen:   {models.RoleCook, models.RoleAdministrator},
	services.ChannelWaiter:    {models.RoleWaiter, models.RoleAdministrator},
	services.ChannelBroadcast: {models.RoleCook, models.RoleWaiter, models.RoleAdministrator},
}

// Handle upgrades GET /ws/:channel to a websocket subscription. The
// restaurant comes from the validated token, never from the client.
func (g *Gateway) Handle(c *gin.Context) {
	identity, err := middleware.GetIdentity(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	channel := services.Channel(c.Param("channel"))
	h, ok := g.hubs[channel]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_CHANNEL",
				"message": "No such notification channel",
			},
		})
		return
	}

	allowed := false
	for _, role := range channelRoles[channel] {
		if identity.Role == role {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Your role does not permit listening on this channel",
			},
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}
	client := &client{hub: h, conn: conn, restaurantID: identity.RestaurantID, send: make(chan []byte, 256)}
	h.register <- client
	go client.writePump()
	go client.readPump()
}
