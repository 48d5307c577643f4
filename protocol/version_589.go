package protocol

// v589 is the 1.20.0 client: abilities and adventure settings are split,
// the network settings request exists and the legacy sound packets are gone.
func v589() VersionData {
	return VersionData{
		Protocol: 589,
		Label:    "1.20.0",
		Packets: map[string]uint32{
			"Login":                         1,
			"PlayStatus":                    2,
			"ServerToClientHandshake":       3,
			"ClientToServerHandshake":       4,
			"Disconnect":                    5,
			"ResourcePacksInfo":             6,
			"ResourcePackStack":             7,
			"ResourcePackClientResponse":    8,
			"Text":                          9,
			"SetTime":                       10,
			"StartGame":                     11,
			"AddPlayer":                     12,
			"AddActor":                      13,
			"RemoveActor":                   14,
			"AddItemActor":                  15,
			"TakeItemActor":                 17,
			"MoveActorAbsolute":             18,
			"MovePlayer":                    19,
			"UpdateBlock":                   21,
			"AddPainting":                   22,
			"LevelEvent":                    25,
			"BlockEvent":                    26,
			"ActorEvent":                    27,
			"MobEffect":                     28,
			"UpdateAttributes":              29,
			"InventoryTransaction":          30,
			"MobEquipment":                  31,
			"MobArmourEquipment":            32,
			"Interact":                      33,
			"BlockPickRequest":              34,
			"PlayerAction":                  36,
			"SetActorData":                  39,
			"SetActorMotion":                40,
			"SetActorLink":                  41,
			"SetHealth":                     42,
			"SetSpawnPosition":              43,
			"Animate":                       44,
			"Respawn":                       45,
			"ContainerOpen":                 46,
			"ContainerClose":                47,
			"PlayerHotBar":                  48,
			"InventoryContent":              49,
			"InventorySlot":                 50,
			"CraftingData":                  52,
			"AdventureSettings":             55,
			"LevelChunk":                    58,
			"ChangeDimension":               61,
			"SetPlayerGameType":             62,
			"PlayerList":                    63,
			"RequestChunkRadius":            69,
			"ChunkRadiusUpdated":            70,
			"GameRulesChanged":              72,
			"BossEvent":                     74,
			"AvailableCommands":             76,
			"CommandRequest":                77,
			"CommandOutput":                 79,
			"NetworkChunkPublisherUpdate":   121,
			"LevelSoundEvent":               123,
			"NetworkSettings":               143,
			"PlayerAuthInput":               144,
			"ItemStackRequest":              147,
			"ItemStackResponse":             148,
			"ToastRequest":                  186,
			"UpdateAbilities":               187,
			"UpdateAdventureSettings":       188,
			"RequestNetworkSettings":        193,
			"UnlockedRecipes":               199,
			"CompressedBiomeDefinitionList": 301,
			"TrimData":                      302,
			"OpenSign":                      303,
		},
		Features: map[string]bool{
			"chunk_cache":              true,
			"server_auth_movement":     true,
			"item_stack_requests":      true,
			"education_edition":        true,
			"toast_requests":           true,
			"player_abilities":         true,
			"network_settings_request": true,
			"hanging_signs":            true,
			"sign_editing":             true,
			"trim_items":               true,
			"compressed_biomes":        true,
			"block_network_ids_hashed": true,
		},
		Blocks:                Range{Min: 0, Max: 1120},
		Items:                 Range{Min: 0, Max: 1310},
		Entities:              Range{Min: 0, Max: 138},
		ChunkVersions:         Range{Min: 35, Max: 39},
		CanonicalChunkVersion: 39,
		Transport: Transport{
			Encryption:           true,
			Compression:          true,
			CompressionThreshold: 256,
		},
		Equivalents: map[string][]Equivalent{
			"UpdateAdventureSettings": {
				{Name: "AdventureSettings", Fields: map[string]string{
					"noAttackingMobs":    "noPvM",
					"noAttackingPlayers": "noPvP",
					"worldImmutable":     "immutableWorld",
				}},
			},
			"UpdateAbilities": {
				{Name: "AdventureSettings", Fields: map[string]string{
					"commandPermissions": "commandPermission",
					"playerPermissions":  "permissionLevel",
					"entityUniqueId":     "playerUniqueId",
				}},
			},
			"AdventureSettings": {
				{Name: "UpdateAdventureSettings", Fields: map[string]string{
					"noPvM":          "noAttackingMobs",
					"noPvP":          "noAttackingPlayers",
					"immutableWorld": "worldImmutable",
				}},
			},
		},
		PacketFeatures: map[string]string{
			"ToastRequest":                  "toast_requests",
			"OpenSign":                      "sign_editing",
			"TrimData":                      "trim_items",
			"CompressedBiomeDefinitionList": "compressed_biomes",
		},
		PacketFields: map[string][]string{
			"Text": {"textType", "needsTranslation", "sourceName", "message", "parameters", "xuid", "platformChatId"},
			"AdventureSettings": {
				"flags", "commandPermission", "permissionLevel", "playerUniqueId",
				"noPvM", "noPvP", "immutableWorld", "showNameTags", "autoJump",
			},
			"UpdateAdventureSettings": {"noAttackingMobs", "noAttackingPlayers", "worldImmutable", "showNameTags", "autoJump"},
			"UpdateAbilities":         {"commandPermissions", "playerPermissions", "entityUniqueId", "layers"},
		},
	}
}
