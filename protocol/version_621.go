package protocol

// v621 is the 1.20.40 client and the server's native protocol. Deprecated
// packets are no longer in the table; cameras are new.
func v621() VersionData {
	return VersionData{
		Protocol: 621,
		Label:    "1.20.40",
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
			"MoveActorAbsolute":             18,
			"MovePlayer":                    19,
			"UpdateBlock":                   21,
			"LevelEvent":                    25,
			"ActorEvent":                    27,
			"UpdateAttributes":              29,
			"InventoryTransaction":          30,
			"MobEquipment":                  31,
			"Interact":                      33,
			"PlayerAction":                  36,
			"SetActorData":                  39,
			"Animate":                       44,
			"Respawn":                       45,
			"ContainerOpen":                 46,
			"ContainerClose":                47,
			"InventoryContent":              49,
			"InventorySlot":                 50,
			"LevelChunk":                    58,
			"ChangeDimension":               61,
			"PlayerList":                    63,
			"RequestChunkRadius":            69,
			"ChunkRadiusUpdated":            70,
			"AvailableCommands":             76,
			"CommandRequest":                77,
			"CommandOutput":                 79,
			"NetworkChunkPublisherUpdate":   121,
			"LevelSoundEvent":               123,
			"NetworkSettings":               143,
			"PlayerAuthInput":               144,
			"ItemStackRequest":              147,
			"ItemStackResponse":             148,
			"UpdateAbilities":               187,
			"UpdateAdventureSettings":       188,
			"RequestNetworkSettings":        193,
			"CameraPresets":                 198,
			"UnlockedRecipes":               199,
			"CameraInstruction":             300,
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
			"cameras":                  true,
			"filtered_text":            true,
		},
		Blocks:                Range{Min: 0, Max: 1165},
		Items:                 Range{Min: 0, Max: 1340},
		Entities:              Range{Min: 0, Max: 141},
		ChunkVersions:         Range{Min: 37, Max: 41},
		CanonicalChunkVersion: 40,
		Transport: Transport{
			Encryption:           true,
			Compression:          true,
			CompressionThreshold: 512,
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
		},
		PacketFeatures: map[string]string{
			"CameraPresets":                 "cameras",
			"CameraInstruction":             "cameras",
			"OpenSign":                      "sign_editing",
			"TrimData":                      "trim_items",
			"CompressedBiomeDefinitionList": "compressed_biomes",
		},
		PacketFields: map[string][]string{
			"Text": {
				"textType", "needsTranslation", "sourceName", "message", "parameters",
				"xuid", "platformChatId", "filteredMessage",
			},
			"UpdateAdventureSettings": {"noAttackingMobs", "noAttackingPlayers", "worldImmutable", "showNameTags", "autoJump"},
			"UpdateAbilities":         {"commandPermissions", "playerPermissions", "entityUniqueId", "layers"},
		},
	}
}
